package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/pipeline"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
)

const tenant = "acme-com"

func seed(t *testing.T) *tenancy.Registry {
	t.Helper()
	ctx := context.Background()
	reg := tenancy.NewRegistry(memory.NewEngine(), nil)

	users, err := reg.Users(ctx, tenant)
	require.NoError(t, err)
	now := time.Now().UTC()
	owner := &entity.User{
		ID: uuid.NewString(), FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com",
		PasswordHash: "x", Role: entity.RoleSuperAdmin, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, users.Insert(ctx, owner.ID, owner))

	lc := leads.NewLeadUseCase(reg, nil)
	pc := pipeline.NewPipelineUseCase(reg, nil)
	stages := map[string]string{"Acme": entity.StageProposal, "Globex": entity.StageNegotiation, "Initech": entity.StageClosedWon}
	for name, stage := range stages {
		b, err := lc.CreateBundle(ctx, tenant, owner.ID, dto.CreateLeadBundleRequest{
			Company:  dto.CompanyInput{Name: name},
			Contacts: []dto.ContactInput{{Name: "Contacto " + name}},
		})
		require.NoError(t, err)
		_, err = pc.Create(ctx, tenant, owner.ID, dto.CreatePipelineRequest{
			Company: b.Company.ID, OpportunityStage: stage, EstimatedValue: decimal.RequireFromString("1000.50"), Probability: 50,
		})
		require.NoError(t, err)
	}
	return reg
}

// ──────────────────────────────────────────────────────────────────────────────
// Tablero
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_TarjetasSegunNivel(t *testing.T) {
	uc := NewDashboardUseCase(seed(t), nil)
	ctx := context.Background()

	for tier, want := range map[Tier]int{TierEmployee: 1, TierAdmin: 2, TierSuperAdmin: 3} {
		res, err := uc.Get(ctx, tenant, tier)
		require.NoError(t, err)
		assert.Len(t, res.Cards, want)
	}

	_, err := uc.Get(ctx, tenant, Tier(9))
	assert.Error(t, err)
}

func TestGet_Estadisticas(t *testing.T) {
	uc := NewDashboardUseCase(seed(t), nil)

	res, err := uc.Get(context.Background(), tenant, TierAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Stats.Leads)
	assert.EqualValues(t, 3, res.Stats.LeadsByStatus[entity.LeadStatusNew])
	assert.Zero(t, res.Stats.LeadsByStatus[entity.LeadStatusDone])
	assert.EqualValues(t, 3, res.Stats.Companies)
	assert.EqualValues(t, 2, res.Stats.OpenPipelines)
	assert.True(t, decimal.RequireFromString("2001").Equal(res.Stats.OpenPipelineValue), res.Stats.OpenPipelineValue.String())
	assert.EqualValues(t, 1, res.Stats.Users)
}

func TestGet_EmpleadoSinConteoDeUsuarios(t *testing.T) {
	uc := NewDashboardUseCase(seed(t), nil)

	res, err := uc.Get(context.Background(), tenant, TierEmployee)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Users)
	assert.EqualValues(t, 3, res.Stats.Leads)
}

func TestGet_TenantVacio(t *testing.T) {
	uc := NewDashboardUseCase(tenancy.NewRegistry(memory.NewEngine(), nil), nil)

	res, err := uc.Get(context.Background(), "globex-com", TierSuperAdmin)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Leads)
	assert.True(t, res.Stats.OpenPipelineValue.IsZero())
	assert.Len(t, res.Stats.LeadsByStatus, 4)
}
