// Package analytics contiene el tablero del CRM: tarjetas según el rol y las cifras
// del tenant.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// Nivel del tablero solicitado; cada nivel incluye las tarjetas del anterior.
type Tier int

const (
	TierEmployee Tier = iota + 1
	TierAdmin
	TierSuperAdmin
)

var tierCards = []dto.Card{
	{Title: "Leads", Description: "Leads por estado y empresas registradas."},
	{Title: "Pipeline", Description: "Oportunidades abiertas y su valor estimado."},
	{Title: "Equipo", Description: "Usuarios de la organización."},
}

var openStages = []string{
	entity.StageLead,
	entity.StageMeeting,
	entity.StageProposal,
	entity.StageNegotiation,
}

var leadStatuses = []string{
	entity.LeadStatusNew,
	entity.LeadStatusQualified,
	entity.LeadStatusContacted,
	entity.LeadStatusDone,
}

// DashboardUseCase genera el tablero del tenant.
type DashboardUseCase struct {
	reg *tenancy.Registry
	log *logger.Logger
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reg *tenancy.Registry, log *logger.Logger) *DashboardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{reg: reg, log: log.Named("dashboard")}
}

// Get construye el tablero del nivel indicado. Las consultas corren en paralelo; el
// conteo de usuarios solo se incluye desde TierAdmin.
func (uc *DashboardUseCase) Get(ctx context.Context, tenantID string, tier Tier) (*dto.DashboardResponse, error) {
	if tier < TierEmployee || tier > TierSuperAdmin {
		return nil, fmt.Errorf("dashboard: nivel desconocido %d", tier)
	}

	// 1. Particiones (antes de lanzar las consultas)
	leads, err := uc.reg.Leads(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	companies, err := uc.reg.CompanyLeads(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pipelines, err := uc.reg.Pipelines(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// 2. Consultas en paralelo; cada goroutine escribe solo su campo
	stats := dto.DashboardStats{LeadsByStatus: make(map[string]int64, len(leadStatuses))}
	byStatus := make([]int64, len(leadStatuses))
	open := repository.Where("opportunityStage", repository.OpIn, openStages)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Leads, err = leads.Count(gctx, repository.Filter{})
		return wrap("leads", err)
	})
	for i, status := range leadStatuses {
		g.Go(func() (err error) {
			byStatus[i], err = leads.Count(gctx, repository.Eq("status", status))
			return wrap("leads por estado", err)
		})
	}
	g.Go(func() (err error) {
		stats.Companies, err = companies.Count(gctx, repository.Filter{})
		return wrap("empresas", err)
	})
	g.Go(func() (err error) {
		stats.CallLogs, err = calls.Count(gctx, repository.Filter{})
		return wrap("llamadas", err)
	})
	g.Go(func() (err error) {
		stats.OpenPipelines, err = pipelines.Count(gctx, open)
		return wrap("pipelines abiertos", err)
	})
	g.Go(func() (err error) {
		var sum decimal.Decimal
		sum, err = pipelines.Sum(gctx, open, "estimatedValue")
		stats.OpenPipelineValue = sum.Round(2)
		return wrap("valor de pipelines", err)
	})
	if tier >= TierAdmin {
		g.Go(func() (err error) {
			stats.Users, err = users.Count(gctx, repository.Filter{})
			return wrap("usuarios", err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, status := range leadStatuses {
		stats.LeadsByStatus[status] = byStatus[i]
	}

	// 3. Tarjetas del nivel
	cards := make([]dto.Card, int(tier))
	copy(cards, tierCards[:tier])

	uc.log.Debug().Str("tenant_id", tenantID).Int("tier", int(tier)).Msg("tablero generado")
	return &dto.DashboardResponse{Cards: cards, Stats: stats}, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}
