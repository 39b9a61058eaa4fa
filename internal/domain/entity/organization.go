package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Organization es el tenant: se crea una vez al registrar la organización y su tenantId
// se deriva del dominio del email del administrador. Global (no vive en una partición de tenant).
type Organization struct {
	ID        string    `json:"id" validate:"required,uuid"`
	TenantID  string    `json:"tenantId" validate:"required,max=48"`
	Title     string    `json:"title,omitempty" validate:"max=100"`
	Domain    string    `json:"domain" validate:"required,fqdn"`
	AdminID   string    `json:"admin,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Estados de una invitación.
const (
	InviteNotSent  = "not_sent"
	InviteSent     = "sent"
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRejected = "rejected"
)

// DefaultInviteMaxRetries intentos de envío antes de abandonar una invitación.
const DefaultInviteMaxRetries = 3

// OrganizationInvite invitación pendiente con contabilidad de reintentos. Global.
type OrganizationInvite struct {
	ID         string    `json:"id" validate:"required,uuid"`
	Email      string    `json:"email" validate:"required,email"`
	TenantID   string    `json:"tenantId" validate:"required"`
	InvitedBy  string    `json:"invitedBy,omitempty"`
	Status     string    `json:"status" validate:"oneof=not_sent sent pending accepted rejected"`
	RetryCount int       `json:"retryCount" validate:"min=0"`
	LastTried  time.Time `json:"lastTried"`
	MaxRetries int       `json:"maxRetries" validate:"min=0"`
	LastError  string    `json:"lastError,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CanRetry informa si la invitación admite otro intento de envío.
func (i *OrganizationInvite) CanRetry() bool {
	return i.Status == InviteNotSent && i.RetryCount < i.MaxRetries
}

var (
	nonTenantChars = regexp.MustCompile(`[^a-z0-9]`)
	simpleDomain   = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9]+)*$`)
)

const (
	// MaxTenantIDLen deja espacio para el prefijo del esquema dentro de los 63 bytes de Postgres.
	MaxTenantIDLen = 48
	tenantHashLen  = 12
)

// DomainFromEmail dominio del email en minúsculas; vacío si el email no tiene '@'.
func DomainFromEmail(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[i+1:]))
}

// TenantIDFromDomain deriva el identificador de tenant. Un dominio de etiquetas alfanuméricas
// que cabe en MaxTenantIDLen cambia '.' por '-' ("acme.com" -> "acme-com"). Cualquier otro
// (con '-', '_' o demasiado largo) usa un prefijo legible, "--" y un hash del dominio completo
// ("ac-me.com" -> "ac-me-com--<hash>"). Las formas simples nunca contienen "--", así que los
// dos grupos no se solapan y dominios distintos no comparten tenant.
func TenantIDFromDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	readable := nonTenantChars.ReplaceAllString(domain, "-")
	if simpleDomain.MatchString(domain) && len(readable) <= MaxTenantIDLen {
		return readable
	}
	sum := sha256.Sum256([]byte(domain))
	prefix := readable
	if max := MaxTenantIDLen - tenantHashLen - 2; len(prefix) > max {
		prefix = prefix[:max]
	}
	prefix = strings.Trim(prefix, "-")
	if prefix == "" {
		prefix = "t"
	}
	return prefix + "--" + hex.EncodeToString(sum[:])[:tenantHashLen]
}
