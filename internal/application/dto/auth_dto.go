package dto

import "time"

// SignupRequest alta de usuario. El rol lo decide el servidor; role se acepta pero se ignora.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=25"`
	LastName  string `json:"lastName" validate:"required,min=1,max=25"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=25"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin employee"`
}

// LoginRequest email + password; el tenant se resuelve por el dominio del email.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest alternativa a la cookie RefreshToken para clientes sin cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// DeviceInfo metadatos del cliente que inicia la sesión.
type DeviceInfo struct {
	IP     string
	Device string
}

// TokenPair credenciales emitidas con sus vencimientos (para Max-Age de las cookies).
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Identity identidad resuelta de una sesión.
type Identity struct {
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	// TokenID jti de la credencial de acceso presentada.
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// LoginResponse salida del login: tokens y perfil básico.
type LoginResponse struct {
	AccessToken    string  `json:"accessToken"`
	RefreshToken   string  `json:"refreshToken"`
	ProfilePicture *string `json:"profilePicture"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
}

// SessionResult resultado de signup/login/refresh antes de armar la respuesta HTTP.
type SessionResult struct {
	Tokens TokenPair
	User   UserResponse
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MeResponse identidad de la sesión y perfil.
type MeResponse struct {
	Identity
	User UserResponse `json:"user"`
}
