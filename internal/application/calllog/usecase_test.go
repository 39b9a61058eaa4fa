package calllog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
)

const tenant = "acme-com"

func newUseCases(t *testing.T) (*CallLogUseCase, *leads.LeadUseCase, *tenancy.Registry) {
	t.Helper()
	reg := tenancy.NewRegistry(memory.NewEngine(), nil)
	return NewCallLogUseCase(reg, nil), leads.NewLeadUseCase(reg, nil), reg
}

func request(mod func(*dto.CreateCallLogRequest)) dto.CreateCallLogRequest {
	follow := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC)
	duration := 120
	in := dto.CreateCallLogRequest{
		Outcome:       entity.OutcomeInterested,
		FollowUp:      &follow,
		Remarks:       "Pidió propuesta",
		CallStartTime: &start,
		CallDuration:  &duration,
	}
	mod(&in)
	return in
}

func countLeads(t *testing.T, reg *tenancy.Registry) int64 {
	t.Helper()
	ctx := context.Background()
	ls, err := reg.Leads(ctx, tenant)
	require.NoError(t, err)
	n, err := ls.Count(ctx, repository.Filter{})
	require.NoError(t, err)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ContraLeadExistente(t *testing.T) {
	uc, lc, _ := newUseCases(t)
	ctx := context.Background()
	b, err := lc.CreateBundle(ctx, tenant, "", dto.CreateLeadBundleRequest{Company: dto.CompanyInput{Name: "Acme"}})
	require.NoError(t, err)

	res, err := uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) { in.Lead = b.Leads[0].ID }))
	require.NoError(t, err)
	assert.Equal(t, b.Leads[0].ID, res.CallLog.Lead)
	assert.Equal(t, 120, res.CallLog.CallDuration)
	assert.Nil(t, res.Lead)
	assert.Nil(t, res.Company)
}

func TestCreate_LeadInexistente(t *testing.T) {
	uc, _, _ := newUseCases(t)

	_, err := uc.Create(context.Background(), tenant, "", request(func(in *dto.CreateCallLogRequest) { in.Lead = uuid.NewString() }))
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestCreate_CreaBundleMinimo(t *testing.T) {
	uc, _, reg := newUseCases(t)

	res, err := uc.Create(context.Background(), tenant, "", request(func(in *dto.CreateCallLogRequest) {
		in.LeadName = "Ana Pérez"
		in.Company = &dto.CompanyInput{Name: "Globex"}
	}))
	require.NoError(t, err)
	require.NotNil(t, res.Lead)
	require.NotNil(t, res.Company)
	assert.Equal(t, "Globex", res.Company.Name)
	assert.Equal(t, "Ana Pérez", res.Lead.Name)
	assert.Equal(t, res.Lead.ID, res.CallLog.Lead)
	assert.EqualValues(t, 1, countLeads(t, reg))
}

func TestCreate_AgregaContactoAEmpresaExistente(t *testing.T) {
	uc, lc, reg := newUseCases(t)
	ctx := context.Background()
	b, err := lc.CreateBundle(ctx, tenant, "", dto.CreateLeadBundleRequest{Company: dto.CompanyInput{Name: "Acme"}})
	require.NoError(t, err)

	res, err := uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) {
		in.LeadName = "Luis Gómez"
		in.CompanyID = b.Company.ID
	}))
	require.NoError(t, err)
	require.NotNil(t, res.Lead)
	assert.Equal(t, b.Company.ID, res.Lead.Company)
	assert.EqualValues(t, 2, countLeads(t, reg))

	_, err = uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) {
		in.LeadName = "Luis Gómez"
		in.CompanyID = uuid.NewString()
	}))
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestCreate_EmpresaDuplicadaNoDejaLlamadaNiLead(t *testing.T) {
	uc, lc, reg := newUseCases(t)
	ctx := context.Background()
	_, err := lc.CreateBundle(ctx, tenant, "", dto.CreateLeadBundleRequest{Company: dto.CompanyInput{Name: "Acme"}})
	require.NoError(t, err)

	_, err = uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) {
		in.LeadName = "Ana Pérez"
		in.Company = &dto.CompanyInput{Name: "acme"}
	}))
	require.ErrorIs(t, err, domain.ErrCompanyExists)

	assert.EqualValues(t, 1, countLeads(t, reg))
	list, err := uc.List(ctx, tenant, dto.CallLogFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Info.Total)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _, _ := newUseCases(t)
	ctx := context.Background()

	cases := map[string]func(*dto.CreateCallLogRequest){
		"sin duración":             func(in *dto.CreateCallLogRequest) { in.Lead = uuid.NewString(); in.CallDuration = nil },
		"duración negativa":        func(in *dto.CreateCallLogRequest) { in.Lead = uuid.NewString(); d := -1; in.CallDuration = &d },
		"sin lead ni nombre":       func(in *dto.CreateCallLogRequest) {},
		"nombre sin empresa":       func(in *dto.CreateCallLogRequest) { in.LeadName = "Ana Pérez" },
		"resultado desconocido":    func(in *dto.CreateCallLogRequest) { in.Lead = uuid.NewString(); in.Outcome = "busy" },
		"observaciones muy cortas": func(in *dto.CreateCallLogRequest) { in.Lead = uuid.NewString(); in.Remarks = "x" },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, tenant, "", request(mod))
			de := domain.AsError(err)
			require.NotNil(t, de)
			assert.Equal(t, domain.TypeValidation, de.Type)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura, actualización y borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraYActualiza(t *testing.T) {
	uc, lc, _ := newUseCases(t)
	ctx := context.Background()
	b, err := lc.CreateBundle(ctx, tenant, "", dto.CreateLeadBundleRequest{Company: dto.CompanyInput{Name: "Acme"}})
	require.NoError(t, err)
	leadID := b.Leads[0].ID

	first, err := uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) { in.Lead = leadID }))
	require.NoError(t, err)
	_, err = uc.Create(ctx, tenant, "", request(func(in *dto.CreateCallLogRequest) {
		in.Lead = leadID
		in.Outcome = entity.OutcomeNotInterested
		in.Remarks = "No contestó el gerente"
	}))
	require.NoError(t, err)

	interested, err := uc.List(ctx, tenant, dto.CallLogFilter{Outcome: entity.OutcomeInterested})
	require.NoError(t, err)
	assert.Len(t, interested.CallLogs, 1)

	onDay, err := uc.List(ctx, tenant, dto.CallLogFilter{FollowUp: "2026-05-04", Lead: leadID})
	require.NoError(t, err)
	assert.Len(t, onDay.CallLogs, 2)

	byRemarks, err := uc.List(ctx, tenant, dto.CallLogFilter{Remarks: "gerente"})
	require.NoError(t, err)
	assert.Len(t, byRemarks.CallLogs, 1)

	done := entity.OutcomeDone
	d := 300
	got, err := uc.Update(ctx, tenant, first.CallLog.ID, dto.UpdateCallLogRequest{Outcome: &done, CallDuration: &d})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeDone, got.Outcome)
	assert.Equal(t, 300, got.CallDuration)

	require.NoError(t, uc.Delete(ctx, tenant, "", first.CallLog.ID))
	_, err = uc.Get(ctx, tenant, first.CallLog.ID)
	assert.ErrorIs(t, err, domain.ErrCallLogNotFound)
	_, err = uc.Update(ctx, tenant, first.CallLog.ID, dto.UpdateCallLogRequest{Outcome: &done})
	assert.ErrorIs(t, err, domain.ErrCallLogNotFound)
}
