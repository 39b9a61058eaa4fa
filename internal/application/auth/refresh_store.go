package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

// RefreshStore persiste las credenciales de refresco en la partición del tenant.
// Solo guarda el hash; el valor en claro nunca toca el almacenamiento.
type RefreshStore struct {
	reg *tenancy.Registry
}

// NewRefreshStore construye el store sobre el registro de particiones.
func NewRefreshStore(reg *tenancy.Registry) *RefreshStore {
	return &RefreshStore{reg: reg}
}

// HashToken SHA-256 en hexadecimal.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Save registra una credencial emitida.
func (s *RefreshStore) Save(ctx context.Context, tenantID, userID, token string, expiresAt time.Time, device dto.DeviceInfo) error {
	tokens, err := s.reg.RefreshTokens(ctx, tenantID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec := &entity.RefreshToken{
		ID:         uuid.NewString(),
		User:       userID,
		TokenHash:  HashToken(token),
		DeviceInfo: entity.DeviceInfo{IP: device.IP, Device: device.Device},
		ExpiresAt:  expiresAt.UTC(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return tokens.Insert(ctx, rec.ID, rec)
}

// Consume busca y elimina en una sola operación la credencial vigente y no revocada.
// Devuelve nil si ya fue consumida o nunca existió.
func (s *RefreshStore) Consume(ctx context.Context, tenantID, token string) (*entity.RefreshToken, error) {
	tokens, err := s.reg.RefreshTokens(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	f := repository.Eq("tokenHash", HashToken(token)).
		And("isRevoked", repository.OpEq, false).
		And("expiresAt", repository.OpGte, time.Now().UTC())
	return tokens.FindOneAndDelete(ctx, f)
}

// Revoke elimina la credencial si sigue almacenada; no falla si ya no está.
func (s *RefreshStore) Revoke(ctx context.Context, tenantID, token string) (bool, error) {
	tokens, err := s.reg.RefreshTokens(ctx, tenantID)
	if err != nil {
		return false, err
	}
	rec, err := tokens.FindOneAndDelete(ctx, repository.Eq("tokenHash", HashToken(token)))
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// CountForUser credenciales almacenadas del usuario (sesiones abiertas).
func (s *RefreshStore) CountForUser(ctx context.Context, tenantID, userID string) (int64, error) {
	tokens, err := s.reg.RefreshTokens(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return tokens.Count(ctx, repository.Eq("user", userID))
}
