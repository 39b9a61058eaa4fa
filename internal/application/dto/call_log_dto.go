package dto

import "time"

// CreateCallLogRequest llamada contra un lead existente (lead) o contra uno nuevo
// (leadName + companyId, o leadName + company).
type CreateCallLogRequest struct {
	Lead          string        `json:"lead,omitempty" validate:"omitempty,uuid"`
	LeadName      string        `json:"leadName,omitempty" validate:"omitempty,min=2,max=100"`
	CompanyID     string        `json:"companyId,omitempty" validate:"omitempty,uuid"`
	Company       *CompanyInput `json:"company,omitempty"`
	Outcome       string        `json:"outcome" validate:"required,oneof=interested not_interested contacted done"`
	FollowUp      *time.Time    `json:"followUp" validate:"required"`
	Remarks       string        `json:"remarks" validate:"required,min=2,max=500"`
	CallStartTime *time.Time    `json:"callStartTime" validate:"required"`
	CallDuration  *int          `json:"callDuration" validate:"required,min=0"`
}

// UpdateCallLogRequest actualización parcial.
type UpdateCallLogRequest struct {
	Outcome       *string    `json:"outcome,omitempty" validate:"omitempty,oneof=interested not_interested contacted done"`
	FollowUp      *time.Time `json:"followUp,omitempty"`
	Remarks       *string    `json:"remarks,omitempty" validate:"omitempty,min=2,max=500"`
	CallStartTime *time.Time `json:"callStartTime,omitempty"`
	CallDuration  *int       `json:"callDuration,omitempty" validate:"omitempty,min=0"`
}

// CallLogFilter filtros de listado.
type CallLogFilter struct {
	PageRequest
	Lead     string `query:"lead" validate:"omitempty,uuid"`
	Outcome  string `query:"outcome" validate:"omitempty,oneof=interested not_interested contacted done"`
	FollowUp string `query:"followUp" validate:"omitempty,datetime=2006-01-02"`
	Remarks  string `query:"remarks" validate:"omitempty,max=500"`
}

// CallLogResponse llamada sin marca de borrado.
type CallLogResponse struct {
	ID            string    `json:"id"`
	Lead          string    `json:"lead"`
	Outcome       string    `json:"outcome"`
	FollowUp      time.Time `json:"followUp"`
	Remarks       string    `json:"remarks"`
	CallStartTime time.Time `json:"callStartTime"`
	CallDuration  int       `json:"callDuration"`
	Owner         string    `json:"owner,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateCallLogResponse la llamada y, si se creó en el acto, el lead nuevo.
type CreateCallLogResponse struct {
	CallLog CallLogResponse  `json:"callLog"`
	Company *CompanyResponse `json:"company,omitempty"`
	Lead    *LeadResponse    `json:"lead,omitempty"`
}

// CallLogListResponse página de llamadas.
type CallLogListResponse struct {
	CallLogs []CallLogResponse `json:"callLogs"`
	Info     PageInfo          `json:"info"`
}
