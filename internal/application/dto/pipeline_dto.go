package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePipelineRequest oportunidad sobre un Lead o directamente sobre una empresa.
type CreatePipelineRequest struct {
	Lead             string           `json:"lead,omitempty" validate:"omitempty,uuid"`
	Company          string           `json:"company,omitempty" validate:"omitempty,uuid"`
	OpportunityStage string           `json:"opportunityStage,omitempty" validate:"omitempty,oneof=lead meeting proposal negotiation closed_won closed_lost"`
	EstimatedValue   decimal.Decimal  `json:"estimatedValue"`
	Probability      int              `json:"probability" validate:"min=0,max=100"`
	ExpectedRevenue  *decimal.Decimal `json:"expectedRevenue,omitempty"`
	NextStep         string           `json:"nextStep,omitempty" validate:"max=255"`
	FollowUp         *time.Time       `json:"followUp,omitempty"`
	Remarks          string           `json:"remarks,omitempty" validate:"max=1000"`
}

// UpdatePipelineRequest actualización parcial.
type UpdatePipelineRequest struct {
	OpportunityStage *string          `json:"opportunityStage,omitempty" validate:"omitempty,oneof=lead meeting proposal negotiation closed_won closed_lost"`
	EstimatedValue   *decimal.Decimal `json:"estimatedValue,omitempty"`
	Probability      *int             `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	ExpectedRevenue  *decimal.Decimal `json:"expectedRevenue,omitempty"`
	NextStep         *string          `json:"nextStep,omitempty" validate:"omitempty,max=255"`
	FollowUp         *time.Time       `json:"followUp,omitempty"`
	Remarks          *string          `json:"remarks,omitempty" validate:"omitempty,max=1000"`
}

// PipelineFilter filtros de listado.
type PipelineFilter struct {
	PageRequest
	OpportunityStage string `query:"opportunityStage" validate:"omitempty,oneof=lead meeting proposal negotiation closed_won closed_lost"`
	Company          string `query:"company" validate:"omitempty,uuid"`
	Lead             string `query:"lead" validate:"omitempty,uuid"`
	FollowUp         string `query:"followUp" validate:"omitempty,datetime=2006-01-02"`
}

// PipelineResponse oportunidad sin marca de borrado.
type PipelineResponse struct {
	ID               string           `json:"id"`
	Company          string           `json:"company"`
	CompanyDetails   *CompanyResponse `json:"companyDetails,omitempty"`
	Lead             *string          `json:"lead"`
	OpportunityStage string           `json:"opportunityStage"`
	EstimatedValue   decimal.Decimal  `json:"estimatedValue"`
	Probability      int              `json:"probability"`
	ExpectedRevenue  decimal.Decimal  `json:"expectedRevenue"`
	NextStep         string           `json:"nextStep,omitempty"`
	FollowUp         *time.Time       `json:"followUp,omitempty"`
	Remarks          string           `json:"remarks,omitempty"`
	Owner            string           `json:"owner"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// PipelineListResponse página de pipelines.
type PipelineListResponse struct {
	Pipelines []PipelineResponse `json:"pipelines"`
	Info      PageInfo           `json:"info"`
}
