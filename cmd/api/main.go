package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/calllog"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/internal/application/pipeline"
	"github.com/jhoicas/CRM-api/internal/bootstrap"
	"github.com/jhoicas/CRM-api/internal/infrastructure/mailer"
	httpRouter "github.com/jhoicas/CRM-api/internal/interfaces/http"
	"github.com/jhoicas/CRM-api/pkg/config"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := bootstrap.NewLogger(cfg)
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	deps, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización de dependencias")
	}
	defer deps.Close()

	issuer := auth.NewCredentialIssuer(auth.JWTConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	reg := deps.Registry
	authUC := auth.NewAuthUseCase(reg, issuer, deps.Revocations, log)
	organizationUC := organization.NewOrganizationUseCase(reg, mailer.NewLogMailer(log), log)
	leadUC := leads.NewLeadUseCase(reg, log)
	pipelineUC := pipeline.NewPipelineUseCase(reg, log)
	callLogUC := calllog.NewCallLogUseCase(reg, log)
	dashboardUC := analytics.NewDashboardUseCase(reg, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	// Las cookies de sesión exigen un origen explícito; sin CORS_ORIGIN_URL no se habilita CORS.
	if cfg.HTTP.CORSOriginURL != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.CORSOriginURL,
			AllowCredentials: true,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		}))
	}
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "CRM API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		OrganizationUC: organizationUC,
		LeadUC:         leadUC,
		PipelineUC:     pipelineUC,
		CallLogUC:      callLogUC,
		DashboardUC:    dashboardUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
