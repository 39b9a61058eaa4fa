package entity

import "time"

// DeviceInfo datos del dispositivo que inició la sesión.
type DeviceInfo struct {
	IP       string `json:"ip,omitempty"`
	Device   string `json:"device,omitempty"`
	OS       string `json:"os,omitempty"`
	Location string `json:"location,omitempty"`
}

// RefreshToken credencial de larga duración persistida en la partición del tenant.
// Se borra (no se marca) en el momento en que se canjea para rotación.
// Solo se guarda el hash SHA-256 del token.
type RefreshToken struct {
	ID              string     `json:"id" validate:"required,uuid"`
	User            string     `json:"user" validate:"required,uuid"`
	TokenHash       string     `json:"tokenHash" validate:"required,len=64"`
	DeviceInfo      DeviceInfo `json:"deviceInfo"`
	IsRevoked       bool       `json:"isRevoked"`
	ExpiresAt       time.Time  `json:"expiresAt" validate:"required"`
	ReplacedByToken string     `json:"replacedByToken,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
