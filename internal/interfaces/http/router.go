package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/calllog"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/internal/application/pipeline"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	OrganizationUC *organization.OrganizationUseCase
	LeadUC         *leads.LeadUseCase
	PipelineUC     *pipeline.PipelineUseCase
	CallLogUC      *calllog.CallLogUseCase
	DashboardUC    *analytics.DashboardUseCase
}

// Router registra las rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, "ok", fiber.Map{"status": "up"})
	})

	api := app.Group("/api/v1")
	authMW := AuthMiddleware(deps.AuthUC)
	admins := RequireRole(entity.RoleSuperAdmin, entity.RoleAdmin)

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authMW, authHandler.Me)

	// Organización: registro y verificación públicos; invitaciones solo administradores
	orgHandler := NewOrganizationHandler(deps.OrganizationUC)
	orgGroup := api.Group("/organization")
	orgGroup.Post("/", orgHandler.Register)
	orgGroup.Post("/verify", orgHandler.Verify)
	orgGroup.Post("/invites", authMW, admins, orgHandler.Invite)

	// Rutas protegidas
	protected := api.Group("/", authMW)

	leadHandler := NewLeadHandler(deps.LeadUC)
	leadGroup := protected.Group("/leads")
	leadGroup.Post("/", leadHandler.Create)
	leadGroup.Get("/", leadHandler.List)
	leadGroup.Get("/:id", leadHandler.GetByID)
	leadGroup.Put("/:id", leadHandler.Update)
	leadGroup.Patch("/:id", leadHandler.Update)
	leadGroup.Delete("/:id", leadHandler.Delete)

	pipelineHandler := NewPipelineHandler(deps.PipelineUC)
	pipelineGroup := protected.Group("/pipelines")
	pipelineGroup.Post("/", pipelineHandler.Create)
	pipelineGroup.Get("/", pipelineHandler.List)
	pipelineGroup.Get("/:id", pipelineHandler.GetByID)
	pipelineGroup.Put("/:id", pipelineHandler.Update)
	pipelineGroup.Patch("/:id", pipelineHandler.Update)
	pipelineGroup.Delete("/:id", admins, pipelineHandler.Delete)

	callLogHandler := NewCallLogHandler(deps.CallLogUC)
	callLogGroup := protected.Group("/call-logs")
	callLogGroup.Post("/", callLogHandler.Create)
	callLogGroup.Get("/", callLogHandler.List)
	callLogGroup.Get("/:id", callLogHandler.GetByID)
	callLogGroup.Put("/:id", callLogHandler.Update)
	callLogGroup.Patch("/:id", callLogHandler.Update)
	callLogGroup.Delete("/:id", callLogHandler.Delete)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboardGroup := protected.Group("/dashboard")
	dashboardGroup.Get("/", dashboardHandler.Tier(analytics.TierEmployee))
	dashboardGroup.Get("/admin", admins, dashboardHandler.Tier(analytics.TierAdmin))
	dashboardGroup.Get("/super-admin", RequireRole(entity.RoleSuperAdmin), dashboardHandler.Tier(analytics.TierSuperAdmin))
}
