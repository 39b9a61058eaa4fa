package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess_RoundTrip(t *testing.T) {
	issued, err := GenerateAccess("s3cr3t", "crm-api", 15*time.Minute, "acme-com", "u1", "admin")
	require.NoError(t, err)

	claims, err := ParseAccess("s3cr3t", issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme-com", claims.TenantID)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestAccess_DosEmisionesSeguidasSonDistintas(t *testing.T) {
	a, err := GenerateAccess("s", "crm-api", time.Minute, "t", "u", "employee")
	require.NoError(t, err)
	b, err := GenerateAccess("s", "crm-api", time.Minute, "t", "u", "employee")
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAccess_ExpiradoVsInvalido(t *testing.T) {
	expired, err := GenerateAccess("s", "crm-api", -time.Minute, "t", "u", "employee")
	require.NoError(t, err)

	_, err = ParseAccess("s", expired.Token)
	assert.True(t, errors.Is(err, ErrExpired), "un token vencido con firma válida es expirado")

	_, err = ParseAccess("otro", expired.Token)
	assert.True(t, errors.Is(err, ErrInvalid), "firma incorrecta es inválido aunque esté vencido")

	_, err = ParseAccess("s", "no.es.un.jwt")
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestAccess_IgnorandoVencimiento(t *testing.T) {
	expired, err := GenerateAccess("s", "crm-api", -time.Minute, "t", "u", "employee")
	require.NoError(t, err)

	claims, err := ParseAccessIgnoringExpiry("s", expired.Token)
	require.NoError(t, err)
	assert.Equal(t, expired.ID, claims.ID)

	_, err = ParseAccessIgnoringExpiry("otro", expired.Token)
	assert.Error(t, err)
}

func TestRefresh_NoSeAceptaComoAcceso(t *testing.T) {
	refresh, err := GenerateRefresh("s", "crm-api", time.Hour, "t", "u")
	require.NoError(t, err)

	_, err = ParseAccess("s", refresh.Token)
	assert.True(t, errors.Is(err, ErrInvalid), "refresh no trae role")

	claims, err := ParseRefresh("s", refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "t", claims.TenantID)
	assert.Equal(t, "u", claims.UserID)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := GenerateAccess("", "crm-api", time.Minute, "t", "u", "admin")
	assert.Error(t, err)
}
