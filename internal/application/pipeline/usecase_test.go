package pipeline

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
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
)

const tenant = "acme-com"

type fixture struct {
	uc      *PipelineUseCase
	leads   *leads.LeadUseCase
	ownerID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	reg := tenancy.NewRegistry(memory.NewEngine(), nil)

	users, err := reg.Users(ctx, tenant)
	require.NoError(t, err)
	now := time.Now().UTC()
	owner := &entity.User{
		ID: uuid.NewString(), FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com",
		PasswordHash: "x", Role: entity.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, users.Insert(ctx, owner.ID, owner))

	return &fixture{uc: NewPipelineUseCase(reg, nil), leads: leads.NewLeadUseCase(reg, nil), ownerID: owner.ID}
}

func (f *fixture) bundle(t *testing.T, company string) *dto.LeadBundleResponse {
	t.Helper()
	res, err := f.leads.CreateBundle(context.Background(), tenant, f.ownerID, dto.CreateLeadBundleRequest{
		Company: dto.CompanyInput{Name: company},
	})
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CalculaIngresoEsperado(t *testing.T) {
	f := newFixture(t)
	b := f.bundle(t, "Acme")

	res, err := f.uc.Create(context.Background(), tenant, f.ownerID, dto.CreatePipelineRequest{
		Company:        b.Company.ID,
		EstimatedValue: decimal.NewFromInt(1000),
		Probability:    35,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(350).Equal(res.ExpectedRevenue))
	assert.Equal(t, entity.StageLead, res.OpportunityStage)
	require.NotNil(t, res.CompanyDetails)
	assert.Equal(t, "Acme", res.CompanyDetails.Name)
	assert.Nil(t, res.Lead)
}

func TestCreate_DesdeLeadTomaLaEmpresa(t *testing.T) {
	f := newFixture(t)
	b := f.bundle(t, "Acme")
	leadID := b.Leads[0].ID

	res, err := f.uc.Create(context.Background(), tenant, f.ownerID, dto.CreatePipelineRequest{
		Lead:            leadID,
		EstimatedValue:  decimal.NewFromInt(500),
		Probability:     50,
		ExpectedRevenue: ptr(decimal.NewFromInt(100)),
	})
	require.NoError(t, err)
	assert.Equal(t, b.Company.ID, res.Company)
	require.NotNil(t, res.Lead)
	assert.Equal(t, leadID, *res.Lead)
	assert.True(t, decimal.NewFromInt(100).Equal(res.ExpectedRevenue), "un valor explícito no se recalcula")
}

func TestCreate_UnoVivoPorEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.bundle(t, "Acme")
	in := dto.CreatePipelineRequest{Company: b.Company.ID, EstimatedValue: decimal.NewFromInt(10), Probability: 10}

	first, err := f.uc.Create(ctx, tenant, f.ownerID, in)
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, tenant, f.ownerID, in)
	require.ErrorIs(t, err, domain.ErrPipelineExists)

	// Tras eliminarlo la empresa queda libre.
	require.NoError(t, f.uc.Delete(ctx, tenant, f.ownerID, first.ID))
	_, err = f.uc.Create(ctx, tenant, f.ownerID, in)
	assert.NoError(t, err)
}

func TestCreate_ReferenciasInexistentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{Company: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	_, err = f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{Lead: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)

	_, err = f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{})
	assert.Equal(t, domain.TypeValidation, domain.AsError(err).Type)

	_, err = f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{Company: uuid.NewString(), Probability: 150})
	assert.Equal(t, domain.TypeValidation, domain.AsError(err).Type)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura y actualización
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_RecalculaSiCambiaLaProbabilidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.bundle(t, "Acme")
	created, err := f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{
		Company: b.Company.ID, EstimatedValue: decimal.NewFromInt(1000), Probability: 10,
	})
	require.NoError(t, err)

	stage := entity.StageNegotiation
	prob := 80
	got, err := f.uc.Update(ctx, tenant, created.ID, dto.UpdatePipelineRequest{OpportunityStage: &stage, Probability: &prob})
	require.NoError(t, err)
	assert.Equal(t, entity.StageNegotiation, got.OpportunityStage)
	assert.True(t, decimal.NewFromInt(800).Equal(got.ExpectedRevenue))

	_, err = f.uc.Update(ctx, tenant, uuid.NewString(), dto.UpdatePipelineRequest{OpportunityStage: &stage})
	assert.ErrorIs(t, err, domain.ErrPipelineNotFound)
}

func TestList_FiltraPorEtapa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Acme", "Globex", "Initech"} {
		b := f.bundle(t, name)
		stage := entity.StageProposal
		if name == "Initech" {
			stage = entity.StageClosedWon
		}
		_, err := f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{
			Company: b.Company.ID, OpportunityStage: stage, EstimatedValue: decimal.NewFromInt(100), Probability: 50,
		})
		require.NoError(t, err)
	}

	res, err := f.uc.List(ctx, tenant, dto.PipelineFilter{OpportunityStage: entity.StageProposal})
	require.NoError(t, err)
	assert.Len(t, res.Pipelines, 2)
	assert.EqualValues(t, 2, res.Info.Total)
	for _, p := range res.Pipelines {
		require.NotNil(t, p.CompanyDetails)
	}

	sorted, err := f.uc.List(ctx, tenant, dto.PipelineFilter{PageRequest: dto.PageRequest{Sort: "estimatedValue", Order: "asc"}})
	require.NoError(t, err)
	assert.Len(t, sorted.Pipelines, 3)
}

func TestGet_EliminadoNoSeEncuentra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.bundle(t, "Acme")
	created, err := f.uc.Create(ctx, tenant, f.ownerID, dto.CreatePipelineRequest{Company: b.Company.ID})
	require.NoError(t, err)

	got, err := f.uc.Get(ctx, tenant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, f.uc.Delete(ctx, tenant, f.ownerID, created.ID))
	_, err = f.uc.Get(ctx, tenant, created.ID)
	assert.ErrorIs(t, err, domain.ErrPipelineNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, tenant, f.ownerID, created.ID), domain.ErrPipelineNotFound)
}

func ptr[T any](v T) *T { return &v }
