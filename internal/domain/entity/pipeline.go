package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Etapas de oportunidad.
const (
	StageLead        = "lead"
	StageMeeting     = "meeting"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

// Pipeline oportunidad por CompanyLead o Lead. Como máximo uno no eliminado por (tenant, company|lead).
type Pipeline struct {
	ID               string          `json:"id" validate:"required,uuid"`
	Company          string          `json:"company" validate:"required,uuid"`
	Lead             *string         `json:"lead"`
	OpportunityStage string          `json:"opportunityStage" validate:"required,oneof=lead meeting proposal negotiation closed_won closed_lost"`
	EstimatedValue   decimal.Decimal `json:"estimatedValue"`
	Probability      int             `json:"probability" validate:"min=0,max=100"`
	ExpectedRevenue  decimal.Decimal `json:"expectedRevenue"`
	NextStep         string          `json:"nextStep,omitempty" validate:"max=255"`
	FollowUp         *time.Time      `json:"followUp,omitempty"`
	Remarks          string          `json:"remarks,omitempty" validate:"max=1000"`
	Owner            string          `json:"owner" validate:"required,uuid"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Deletable
}

// ComputeExpectedRevenue valor estimado ponderado por la probabilidad (0–100).
func ComputeExpectedRevenue(estimated decimal.Decimal, probability int) decimal.Decimal {
	return estimated.Mul(decimal.NewFromInt(int64(probability))).Div(decimal.NewFromInt(100)).Round(2)
}

// IsOpen informa si la oportunidad sigue abierta.
func (p *Pipeline) IsOpen() bool {
	return p.OpportunityStage != StageClosedWon && p.OpportunityStage != StageClosedLost
}
