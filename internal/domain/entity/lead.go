package entity

import "time"

// Estados de un lead.
const (
	LeadStatusNew       = "new"
	LeadStatusQualified = "qualified"
	LeadStatusContacted = "contacted"
	LeadStatusDone      = "done"
)

// Prioridades de un lead.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// CompanyLead organización prospecto. name+phone debería ser único entre los no eliminados
// (se verifica en la aplicación, no en la base de datos).
type CompanyLead struct {
	ID            string    `json:"id" validate:"required,uuid"`
	Name          string    `json:"name" validate:"required,min=2,max=100"`
	NameKey       string    `json:"nameKey" validate:"required"`
	Phone         Phone     `json:"phone"`
	Website       string    `json:"website,omitempty" validate:"omitempty,url"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	SocialProfile string    `json:"socialProfile,omitempty" validate:"omitempty,url"`
	Owner         string    `json:"owner,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Deletable
}

// ContactLead persona de contacto en una CompanyLead.
type ContactLead struct {
	ID        string    `json:"id" validate:"required,uuid"`
	Company   string    `json:"company" validate:"required,uuid"`
	Name      string    `json:"name" validate:"required,min=2,max=50"`
	Phone     Phone     `json:"phone"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Deletable
}

// Lead une una CompanyLead con una ContactLead (opcional) y metadatos de venta.
type Lead struct {
	ID        string     `json:"id" validate:"required,uuid"`
	Company   string     `json:"company" validate:"required,uuid"`
	Contact   *string    `json:"contact"`
	Status    string     `json:"status" validate:"required,oneof=new qualified contacted done"`
	Source    string     `json:"source,omitempty" validate:"omitempty,min=2,max=50"`
	FollowUp  *time.Time `json:"followUp,omitempty"`
	Priority  string     `json:"priority" validate:"required,oneof=low medium high"`
	Owner     string     `json:"owner,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Deletable
}
