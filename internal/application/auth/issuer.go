package auth

import (
	"errors"
	"time"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/jwt"
)

// JWTConfig secretos y vigencias de las credenciales.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// CredentialIssuer firma y verifica el par acceso/refresco.
type CredentialIssuer struct {
	cfg JWTConfig
}

// NewCredentialIssuer aplica las vigencias por defecto (15m y 90d) si vienen en cero.
func NewCredentialIssuer(cfg JWTConfig) *CredentialIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 90 * 24 * time.Hour
	}
	return &CredentialIssuer{cfg: cfg}
}

// Issue emite un par nuevo para el sujeto.
func (i *CredentialIssuer) Issue(tenantID, userID, role string) (dto.TokenPair, error) {
	access, err := jwt.GenerateAccess(i.cfg.AccessSecret, i.cfg.Issuer, i.cfg.AccessTTL, tenantID, userID, role)
	if err != nil {
		return dto.TokenPair{}, domain.NewServer(err)
	}
	refresh, err := jwt.GenerateRefresh(i.cfg.RefreshSecret, i.cfg.Issuer, i.cfg.RefreshTTL, tenantID, userID)
	if err != nil {
		return dto.TokenPair{}, domain.NewServer(err)
	}
	return dto.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// VerifyAccess distingue credencial vencida de credencial inválida.
func (i *CredentialIssuer) VerifyAccess(token string) (*dto.Identity, error) {
	if token == "" {
		return nil, domain.ErrAuthTokenMissing
	}
	claims, err := jwt.ParseAccess(i.cfg.AccessSecret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, domain.ErrAccessExpired
		}
		return nil, domain.ErrAccessInvalid
	}
	if !schema.ValidTenantID(claims.TenantID) {
		return nil, domain.ErrAccessInvalid
	}
	return &dto.Identity{
		TenantID:  claims.TenantID,
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyRefresh valida firma y vigencia de la credencial de refresco.
func (i *CredentialIssuer) VerifyRefresh(token string) (tenantID, userID string, err error) {
	if token == "" {
		return "", "", domain.ErrRefreshMissing
	}
	claims, err := jwt.ParseRefresh(i.cfg.RefreshSecret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return "", "", domain.ErrRefreshExpired
		}
		return "", "", domain.ErrRefreshInvalid
	}
	if !schema.ValidTenantID(claims.TenantID) {
		return "", "", domain.ErrRefreshInvalid
	}
	return claims.TenantID, claims.UserID, nil
}

// accessClaimsIgnoringExpiry identidad de una credencial de acceso con firma válida, vencida o no.
func (i *CredentialIssuer) accessClaimsIgnoringExpiry(token string) (jti string, expiresAt time.Time, ok bool) {
	claims, err := jwt.ParseAccessIgnoringExpiry(i.cfg.AccessSecret, token)
	if err != nil || claims.ExpiresAt == nil {
		return "", time.Time{}, false
	}
	return claims.ID, claims.ExpiresAt.Time, true
}
