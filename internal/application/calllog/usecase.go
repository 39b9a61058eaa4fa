// Package calllog registra llamadas contra leads; si el lead aún no existe lo crea en la
// misma transacción que la llamada.
package calllog

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

// CallLogUseCase casos de uso de registros de llamada.
type CallLogUseCase struct {
	reg *tenancy.Registry
	log *logger.Logger
}

// NewCallLogUseCase construye el caso de uso.
func NewCallLogUseCase(reg *tenancy.Registry, log *logger.Logger) *CallLogUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CallLogUseCase{reg: reg, log: log.Named("calllog")}
}

// Create registra la llamada. Con lead, el lead debe existir. Sin lead, leadName más companyId
// agrega un contacto a esa empresa, y leadName más company crea el bundle mínimo; en ambos
// casos lead y llamada se confirman juntos.
func (uc *CallLogUseCase) Create(ctx context.Context, tenantID, ownerID string, in dto.CreateCallLogRequest) (*dto.CreateCallLogResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	if in.Lead == "" {
		if in.LeadName == "" {
			return nil, domain.NewValidation("se requiere lead o leadName")
		}
		if in.CompanyID == "" && in.Company == nil {
			return nil, domain.NewValidation("se requiere companyId o company para crear el lead")
		}
		if in.Company != nil {
			if err := validator.Struct(in.Company); err != nil {
				return nil, domain.NewValidation(err.Error())
			}
		}
	}

	p, err := leads.OpenPartitions(ctx, uc.reg, tenantID)
	if err != nil {
		return nil, err
	}
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &entity.CallLog{
		ID:            uuid.NewString(),
		Lead:          in.Lead,
		Outcome:       in.Outcome,
		FollowUp:      in.FollowUp.UTC(),
		Remarks:       in.Remarks,
		CallStartTime: in.CallStartTime.UTC(),
		CallDuration:  *in.CallDuration,
		Owner:         ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created *leads.Bundle
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		// 1. Resolver o crear el lead
		switch {
		case in.Lead != "":
			lead, err := p.Leads.FindByID(ctx, in.Lead)
			if err != nil {
				return err
			}
			if lead == nil {
				return domain.ErrLeadNotFound
			}
		case in.CompanyID != "":
			b, err := leads.AddLeadInTx(ctx, p, ownerID, in.CompanyID, dto.ContactInput{Name: in.LeadName})
			if err != nil {
				return err
			}
			created = b
		default:
			b, err := leads.CreateBundleInTx(ctx, p, ownerID, dto.CreateLeadBundleRequest{
				Company:  *in.Company,
				Contacts: []dto.ContactInput{{Name: in.LeadName}},
			})
			if err != nil {
				return err
			}
			created = b
		}
		if created != nil {
			rec.Lead = created.Leads[0].ID
		}

		// 2. La llamada
		return calls.Insert(ctx, rec.ID, rec)
	})
	if err != nil {
		return nil, err
	}

	out := &dto.CreateCallLogResponse{CallLog: ToResponse(rec)}
	if created != nil {
		bundle := created.Response()
		out.Company = &bundle.Company
		out.Lead = &bundle.Leads[0]
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("call_log_id", rec.ID).Str("lead_id", rec.Lead).Msg("llamada registrada")
	return out, nil
}

// List página de llamadas vivas.
func (uc *CallLogUseCase) List(ctx context.Context, tenantID string, in dto.CallLogFilter) (*dto.CallLogListResponse, error) {
	in.DefaultPage()
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	opts, err := leads.FindOptions(calls.Handle(), in.PageRequest)
	if err != nil {
		return nil, err
	}

	f := repository.Filter{}
	if in.Lead != "" {
		f = f.And("lead", repository.OpEq, in.Lead)
	}
	if in.Outcome != "" {
		f = f.And("outcome", repository.OpEq, in.Outcome)
	}
	if in.Remarks != "" {
		f = f.And("remarks", repository.OpContains, in.Remarks)
	}
	if in.FollowUp != "" {
		day, err := leads.DayRange("followUp", in.FollowUp)
		if err != nil {
			return nil, err
		}
		f = f.Merge(day)
	}

	rows, err := calls.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	total, err := calls.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CallLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToResponse(r))
	}
	return &dto.CallLogListResponse{CallLogs: out, Info: dto.NewPageInfo(total, in.PageRequest)}, nil
}

// Get llamada viva por id.
func (uc *CallLogUseCase) Get(ctx context.Context, tenantID, id string) (*dto.CallLogResponse, error) {
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rec, err := calls.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrCallLogNotFound
	}
	res := ToResponse(rec)
	return &res, nil
}

// Update cambia los campos enviados.
func (uc *CallLogUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateCallLogRequest) (*dto.CallLogResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rec, err := calls.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrCallLogNotFound
	}
	if in.Outcome != nil {
		rec.Outcome = *in.Outcome
	}
	if in.FollowUp != nil {
		rec.FollowUp = in.FollowUp.UTC()
	}
	if in.Remarks != nil {
		rec.Remarks = *in.Remarks
	}
	if in.CallStartTime != nil {
		rec.CallStartTime = in.CallStartTime.UTC()
	}
	if in.CallDuration != nil {
		rec.CallDuration = *in.CallDuration
	}
	rec.UpdatedAt = time.Now().UTC()

	applied, err := calls.Replace(ctx, rec.ID, rec)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrCallLogNotFound
	}
	res := ToResponse(rec)
	return &res, nil
}

// Delete borrado lógico.
func (uc *CallLogUseCase) Delete(ctx context.Context, tenantID, actorID, id string) error {
	calls, err := uc.reg.CallLogs(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := calls.SoftDelete(ctx, id, actorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCallLogNotFound
		}
		return err
	}
	return nil
}

// ToResponse proyección de la llamada sin marca de borrado.
func ToResponse(c *entity.CallLog) dto.CallLogResponse {
	return dto.CallLogResponse{
		ID:            c.ID,
		Lead:          c.Lead,
		Outcome:       c.Outcome,
		FollowUp:      c.FollowUp,
		Remarks:       c.Remarks,
		CallStartTime: c.CallStartTime,
		CallDuration:  c.CallDuration,
		Owner:         c.Owner,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
