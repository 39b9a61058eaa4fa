package dto

import "time"

// CompanyInput datos de la empresa prospecto en la creación del bundle.
type CompanyInput struct {
	Name          string   `json:"name" validate:"required,min=2,max=100"`
	Phone         PhoneDTO `json:"phone"`
	Website       string   `json:"website,omitempty" validate:"omitempty,url"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	SocialProfile string   `json:"socialProfile,omitempty" validate:"omitempty,url"`
}

// ContactInput contacto con sus metadatos de venta propios.
type ContactInput struct {
	Name     string     `json:"name" validate:"required,min=2,max=50"`
	Phone    PhoneDTO   `json:"phone"`
	Email    string     `json:"email,omitempty" validate:"omitempty,email"`
	Status   string     `json:"status,omitempty" validate:"omitempty,oneof=new qualified contacted done"`
	Source   string     `json:"source,omitempty" validate:"omitempty,min=2,max=50"`
	FollowUp *time.Time `json:"followUp,omitempty"`
	Priority string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// CreateLeadBundleRequest empresa + contactos; cada contacto genera un Lead.
type CreateLeadBundleRequest struct {
	Company  CompanyInput   `json:"company" validate:"required"`
	Contacts []ContactInput `json:"contacts" validate:"omitempty,dive"`
}

// UpdateLeadRequest actualización parcial de metadatos de venta.
type UpdateLeadRequest struct {
	Status   *string    `json:"status,omitempty" validate:"omitempty,oneof=new qualified contacted done"`
	Source   *string    `json:"source,omitempty" validate:"omitempty,min=2,max=50"`
	FollowUp *time.Time `json:"followUp,omitempty"`
	Priority *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// LeadFilter filtros de listado.
type LeadFilter struct {
	PageRequest
	Status   string `query:"status" validate:"omitempty,oneof=new qualified contacted done"`
	Source   string `query:"source" validate:"omitempty,max=50"`
	Company  string `query:"company" validate:"omitempty,uuid"`
	FollowUp string `query:"followUp" validate:"omitempty,datetime=2006-01-02"`
}

// CompanyResponse empresa sin marca de borrado.
type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         PhoneDTO  `json:"phone"`
	Website       string    `json:"website,omitempty"`
	Email         string    `json:"email,omitempty"`
	SocialProfile string    `json:"socialProfile,omitempty"`
	Owner         string    `json:"owner,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LeadResponse proyección del Lead con los datos del contacto incorporados.
type LeadResponse struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	CompanyName string     `json:"companyName,omitempty"`
	Contact     *string    `json:"contact"`
	Name        string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       *PhoneDTO  `json:"phone,omitempty"`
	Status      string     `json:"status"`
	Source      string     `json:"source,omitempty"`
	FollowUp    *time.Time `json:"followUp,omitempty"`
	Priority    string     `json:"priority"`
	Owner       string     `json:"owner,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LeadBundleResponse resultado de la creación compuesta.
type LeadBundleResponse struct {
	Company CompanyResponse `json:"company"`
	Leads   []LeadResponse  `json:"leads"`
}

// LeadListResponse página de leads.
type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Info  PageInfo       `json:"info"`
}
