package entity

import "time"

// Resultados de una llamada.
const (
	OutcomeInterested    = "interested"
	OutcomeNotInterested = "not_interested"
	OutcomeContacted     = "contacted"
	OutcomeDone          = "done"
)

// CallLog llamada registrada contra un Lead. CallDuration en segundos, nunca negativa.
type CallLog struct {
	ID            string    `json:"id" validate:"required,uuid"`
	Lead          string    `json:"lead" validate:"required,uuid"`
	Outcome       string    `json:"outcome" validate:"required,oneof=interested not_interested contacted done"`
	FollowUp      time.Time `json:"followUp" validate:"required"`
	Remarks       string    `json:"remarks" validate:"required,min=2,max=500"`
	CallStartTime time.Time `json:"callStartTime" validate:"required"`
	CallDuration  int       `json:"callDuration" validate:"min=0"`
	Owner         string    `json:"owner,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Deletable
}
