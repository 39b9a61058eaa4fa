package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEmployee   = "employee"
)

// User principal humano; pertenece a exactamente un tenant (vive en su partición).
// El email es único dentro de la partición, no globalmente.
type User struct {
	ID           string    `json:"id" validate:"required,uuid"`
	FirstName    string    `json:"firstName" validate:"required,min=2,max=25"`
	LastName     string    `json:"lastName" validate:"required,min=1,max=25"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"passwordHash" validate:"required"` // bcrypt, nunca en claro
	ProfileImage string    `json:"profileImage,omitempty"`
	Role         string    `json:"role" validate:"required,oneof=super_admin admin employee"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
