// Package bootstrap arma las dependencias compartidas por la API y por crmctl:
// motor de almacenamiento, registro de particiones y lista de revocación.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
	"github.com/jhoicas/CRM-api/internal/infrastructure/postgres"
	"github.com/jhoicas/CRM-api/internal/infrastructure/redis"
	"github.com/jhoicas/CRM-api/pkg/config"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// App dependencias abiertas. Close libera conexiones en orden inverso.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Registry *tenancy.Registry
	// Revocations es nil si no hay Redis configurado.
	Revocations auth.AccessRevocations

	closers []func()
}

// Open abre el motor elegido por STORAGE_DRIVER y, si hay REDIS_ADDR, la lista de revocación.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	engine, err := a.openEngine(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Registry = tenancy.NewRegistry(engine, log)

	if cfg.Redis.Enabled() {
		client := redis.NewClient(cfg.Redis)
		a.closers = append(a.closers, func() { _ = client.Close() })
		deny := redis.NewDenylist(client)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := deny.Ping(pingCtx); err != nil {
			a.Close()
			return nil, fmt.Errorf("bootstrap: redis: %w", err)
		}
		a.Revocations = deny
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lista de revocación en Redis activa")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: el logout no revoca credenciales de acceso vigentes")
	}
	return a, nil
}

func (a *App) openEngine(ctx context.Context) (repository.Engine, error) {
	switch a.Config.Storage.Driver {
	case "memory":
		a.Log.Warn().Msg("motor en memoria: los datos se pierden al reiniciar")
		return memory.NewEngine(), nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, a.Config.DB)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return postgres.NewEngine(pool, a.Log), nil
	default:
		return nil, fmt.Errorf("bootstrap: STORAGE_DRIVER desconocido %q", a.Config.Storage.Driver)
	}
}

// Close cierra lo abierto por Open.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewLogger logger de la app según APP_ENV y LOG_LEVEL.
func NewLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: cfg.App.Name})
}
