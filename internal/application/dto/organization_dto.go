package dto

import "time"

// RegisterOrganizationRequest organización + su administrador inicial.
type RegisterOrganizationRequest struct {
	Title     string `json:"title" validate:"required,min=2,max=50"`
	FirstName string `json:"firstName" validate:"required,min=2,max=25"`
	LastName  string `json:"lastName" validate:"required,min=1,max=25"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=25"`
}

// VerifyOrganizationRequest consulta de disponibilidad por email.
type VerifyOrganizationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOrganizationResponse resultado de la consulta.
type VerifyOrganizationResponse struct {
	OrganizationExists bool `json:"organizationExists"`
}

// OrganizationResponse organización registrada.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain"`
	Admin     string    `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterOrganizationResponse organización y administrador creados.
type RegisterOrganizationResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Admin        UserResponse         `json:"admin"`
}

// InviteUsersRequest emails a invitar al tenant del usuario actual.
type InviteUsersRequest struct {
	Users []string `json:"users" validate:"required,min=1,max=50,dive,email"`
}

// InviteResponse invitación con su estado de envío.
type InviteResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	RetryCount int       `json:"retryCount"`
	MaxRetries int       `json:"maxRetries"`
	LastTried  time.Time `json:"lastTried"`
}

// DispatchResult resumen de una pasada de envío de invitaciones.
type DispatchResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
