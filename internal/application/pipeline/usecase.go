// Package pipeline gestiona oportunidades de venta: a lo sumo una viva por empresa.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

// PipelineUseCase casos de uso de pipelines.
type PipelineUseCase struct {
	reg *tenancy.Registry
	log *logger.Logger
}

// NewPipelineUseCase construye el caso de uso.
func NewPipelineUseCase(reg *tenancy.Registry, log *logger.Logger) *PipelineUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PipelineUseCase{reg: reg, log: log.Named("pipeline")}
}

type partitions struct {
	lead      *leads.Partitions
	pipelines *tenancy.Partition[entity.Pipeline]
}

func (uc *PipelineUseCase) open(ctx context.Context, tenantID string) (*partitions, error) {
	lp, err := leads.OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}
	pipelines, err := uc.reg.Pipelines(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &partitions{lead: lp, pipelines: pipelines}, nil
}

// Create abre una oportunidad sobre un lead o una empresa. Si llega lead, la empresa se toma
// del lead. El ingreso esperado por defecto es estimatedValue * probability / 100.
func (uc *PipelineUseCase) Create(ctx context.Context, tenantID, ownerID string, in dto.CreatePipelineRequest) (*dto.PipelineResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	if in.Lead == "" && in.Company == "" {
		return nil, domain.NewValidation("se requiere lead o company")
	}
	if in.EstimatedValue.IsNegative() {
		return nil, domain.NewValidation("estimatedValue no puede ser negativo")
	}
	p, err := uc.open(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stage := in.OpportunityStage
	if stage == "" {
		stage = entity.StageLead
	}
	expected := entity.ComputeExpectedRevenue(in.EstimatedValue, in.Probability)
	if in.ExpectedRevenue != nil {
		expected = *in.ExpectedRevenue
	}
	rec := &entity.Pipeline{
		ID:               uuid.NewString(),
		Company:          in.Company,
		OpportunityStage: stage,
		EstimatedValue:   in.EstimatedValue,
		Probability:      in.Probability,
		ExpectedRevenue:  expected,
		NextStep:         in.NextStep,
		FollowUp:         in.FollowUp,
		Remarks:          in.Remarks,
		Owner:            ownerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var company *entity.CompanyLead
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		// 1. Resolver empresa (directa o a través del lead)
		if in.Lead != "" {
			lead, err := p.lead.Leads.FindByID(ctx, in.Lead)
			if err != nil {
				return err
			}
			if lead == nil {
				return domain.ErrLeadNotFound
			}
			if in.Company != "" && in.Company != lead.Company {
				return domain.NewValidation("el lead no pertenece a la empresa indicada")
			}
			leadID := lead.ID
			rec.Lead = &leadID
			rec.Company = lead.Company
		}
		if err := p.pipelines.Lock(ctx, "company:"+rec.Company); err != nil {
			return err
		}
		var err error
		company, err = p.lead.Companies.FindByID(ctx, rec.Company)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrCompanyNotFound
		}

		// 2. Una sola oportunidad viva por empresa
		n, err := p.pipelines.Count(ctx, repository.Eq("company", rec.Company))
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrPipelineExists
		}
		return p.pipelines.Insert(ctx, rec.ID, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("pipeline_id", rec.ID).Str("company_id", rec.Company).Msg("pipeline creado")
	res := ToResponse(rec, company)
	return &res, nil
}

// List página de pipelines vivos.
func (uc *PipelineUseCase) List(ctx context.Context, tenantID string, in dto.PipelineFilter) (*dto.PipelineListResponse, error) {
	in.DefaultPage()
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	p, err := uc.open(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	opts, err := leads.FindOptions(p.pipelines.Handle(), in.PageRequest)
	if err != nil {
		return nil, err
	}

	f := repository.Filter{}
	if in.OpportunityStage != "" {
		f = f.And("opportunityStage", repository.OpEq, in.OpportunityStage)
	}
	if in.Company != "" {
		f = f.And("company", repository.OpEq, in.Company)
	}
	if in.Lead != "" {
		f = f.And("lead", repository.OpEq, in.Lead)
	}
	if in.FollowUp != "" {
		day, err := leads.DayRange("followUp", in.FollowUp)
		if err != nil {
			return nil, err
		}
		f = f.Merge(day)
	}

	rows, err := p.pipelines.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	total, err := p.pipelines.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	companies, err := companiesByID(ctx, p, rows)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PipelineResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToResponse(r, companies[r.Company]))
	}
	return &dto.PipelineListResponse{Pipelines: out, Info: dto.NewPageInfo(total, in.PageRequest)}, nil
}

func companiesByID(ctx context.Context, p *partitions, rows []*entity.Pipeline) (map[string]*entity.CompanyLead, error) {
	out := map[string]*entity.CompanyLead{}
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Company)
	}
	companies, err := p.lead.Companies.Find(ctx, repository.Where("id", repository.OpIn, ids), repository.FindOptions{})
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		out[c.ID] = c
	}
	return out, nil
}

// Get pipeline vivo por id.
func (uc *PipelineUseCase) Get(ctx context.Context, tenantID, id string) (*dto.PipelineResponse, error) {
	p, err := uc.open(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rec, err := p.pipelines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrPipelineNotFound
	}
	company, err := p.lead.Companies.FindByID(ctx, rec.Company)
	if err != nil {
		return nil, err
	}
	res := ToResponse(rec, company)
	return &res, nil
}

// Update cambia los campos enviados. Si cambia el valor o la probabilidad y no se envía
// expectedRevenue, este se recalcula.
func (uc *PipelineUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdatePipelineRequest) (*dto.PipelineResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	if in.EstimatedValue != nil && in.EstimatedValue.IsNegative() {
		return nil, domain.NewValidation("estimatedValue no puede ser negativo")
	}
	p, err := uc.open(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rec, err := p.pipelines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrPipelineNotFound
	}

	recompute := false
	if in.OpportunityStage != nil {
		rec.OpportunityStage = *in.OpportunityStage
	}
	if in.EstimatedValue != nil {
		rec.EstimatedValue = *in.EstimatedValue
		recompute = true
	}
	if in.Probability != nil {
		rec.Probability = *in.Probability
		recompute = true
	}
	switch {
	case in.ExpectedRevenue != nil:
		rec.ExpectedRevenue = *in.ExpectedRevenue
	case recompute:
		rec.ExpectedRevenue = entity.ComputeExpectedRevenue(rec.EstimatedValue, rec.Probability)
	}
	if in.NextStep != nil {
		rec.NextStep = *in.NextStep
	}
	if in.FollowUp != nil {
		rec.FollowUp = in.FollowUp
	}
	if in.Remarks != nil {
		rec.Remarks = *in.Remarks
	}
	rec.UpdatedAt = time.Now().UTC()

	applied, err := p.pipelines.Replace(ctx, rec.ID, rec)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrPipelineNotFound
	}
	company, err := p.lead.Companies.FindByID(ctx, rec.Company)
	if err != nil {
		return nil, err
	}
	res := ToResponse(rec, company)
	return &res, nil
}

// Delete borrado lógico; libera la empresa para una nueva oportunidad.
func (uc *PipelineUseCase) Delete(ctx context.Context, tenantID, actorID, id string) error {
	pipelines, err := uc.reg.Pipelines(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := pipelines.SoftDelete(ctx, id, actorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPipelineNotFound
		}
		return err
	}
	return nil
}

// ToResponse proyección del pipeline con la empresa, si se conoce.
func ToResponse(p *entity.Pipeline, company *entity.CompanyLead) dto.PipelineResponse {
	out := dto.PipelineResponse{
		ID:               p.ID,
		Company:          p.Company,
		Lead:             p.Lead,
		OpportunityStage: p.OpportunityStage,
		EstimatedValue:   p.EstimatedValue,
		Probability:      p.Probability,
		ExpectedRevenue:  p.ExpectedRevenue,
		NextStep:         p.NextStep,
		FollowUp:         p.FollowUp,
		Remarks:          p.Remarks,
		Owner:            p.Owner,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if company != nil {
		c := leads.ToCompanyResponse(company)
		out.CompanyDetails = &c
	}
	return out
}
