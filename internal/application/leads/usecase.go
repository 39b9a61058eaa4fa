// Package leads crea y consulta leads: la creación compuesta empresa + contactos + leads y la
// composición de lectura que une cada lead con su empresa y su contacto.
package leads

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

// LeadUseCase casos de uso de leads sobre el registro de particiones.
type LeadUseCase struct {
	reg *tenancy.Registry
	log *logger.Logger
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(reg *tenancy.Registry, log *logger.Logger) *LeadUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LeadUseCase{reg: reg, log: log.Named("leads")}
}

// FindOptions traduce paginación y orden validando que el campo sea ordenable en la partición.
func FindOptions(h *tenancy.Handle, p dto.PageRequest) (repository.FindOptions, error) {
	p.DefaultPage()
	if p.Page > dto.MaxPage || p.Limit > 100 {
		return repository.FindOptions{}, domain.NewValidation("página fuera de rango")
	}
	if _, ok := h.Definition.Sortable[p.Sort]; !ok {
		return repository.FindOptions{}, domain.NewValidation("no se puede ordenar por " + p.Sort)
	}
	return repository.FindOptions{
		SortPath: p.Sort,
		Desc:     p.Order == "desc",
		Limit:    p.Limit,
		Offset:   p.Offset(),
	}, nil
}

// DayRange filtro del día completo [d, d+1) para una fecha YYYY-MM-DD.
func DayRange(path, day string) (repository.Filter, error) {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return repository.Filter{}, domain.NewValidation("fecha inválida, formato esperado YYYY-MM-DD")
	}
	return repository.Range(path, d, d.AddDate(0, 0, 1)), nil
}

// List página de leads vivos con filtros por estado, fuente, empresa y día de seguimiento.
func (uc *LeadUseCase) List(ctx context.Context, tenantID string, in dto.LeadFilter) (*dto.LeadListResponse, error) {
	in.DefaultPage()
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	p, err := OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}
	opts, err := FindOptions(p.Leads.Handle(), in.PageRequest)
	if err != nil {
		return nil, err
	}

	f := repository.Filter{}
	if in.Status != "" {
		f = f.And("status", repository.OpEq, in.Status)
	}
	if in.Source != "" {
		f = f.And("source", repository.OpContains, in.Source)
	}
	if in.Company != "" {
		f = f.And("company", repository.OpEq, in.Company)
	}
	if in.FollowUp != "" {
		day, err := DayRange("followUp", in.FollowUp)
		if err != nil {
			return nil, err
		}
		f = f.Merge(day)
	}

	rows, err := p.Leads.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	total, err := p.Leads.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := compose(ctx, p, rows)
	if err != nil {
		return nil, err
	}
	return &dto.LeadListResponse{Leads: items, Info: dto.NewPageInfo(total, in.PageRequest)}, nil
}

// Get lead por id con su empresa y contacto.
func (uc *LeadUseCase) Get(ctx context.Context, tenantID, id string) (*dto.LeadResponse, error) {
	p, err := OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}
	lead, err := p.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrLeadNotFound
	}
	items, err := compose(ctx, p, []*entity.Lead{lead})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Update actualiza los metadatos de venta del lead; los campos nil no cambian.
func (uc *LeadUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	p, err := OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}
	lead, err := p.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrLeadNotFound
	}
	if in.Status != nil {
		lead.Status = *in.Status
	}
	if in.Source != nil {
		lead.Source = *in.Source
	}
	if in.FollowUp != nil {
		lead.FollowUp = in.FollowUp
	}
	if in.Priority != nil {
		lead.Priority = *in.Priority
	}
	lead.UpdatedAt = time.Now().UTC()

	applied, err := p.Leads.Replace(ctx, lead.ID, lead)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrLeadNotFound
	}
	items, err := compose(ctx, p, []*entity.Lead{lead})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Delete borrado lógico del lead por actorID.
func (uc *LeadUseCase) Delete(ctx context.Context, tenantID, actorID, id string) error {
	leads, err := uc.reg.Leads(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := leads.SoftDelete(ctx, id, actorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLeadNotFound
		}
		return err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("lead_id", id).Str("by", actorID).Msg("lead eliminado")
	return nil
}
