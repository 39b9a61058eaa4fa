package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]string) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func requiredValues() map[string]string {
	return map[string]string{
		"DATABASE_URL":       "postgres://u:p@localhost:5432/crm",
		"JWT_ACCESS_SECRET":  "access",
		"JWT_REFRESH_SECRET": "refresh",
		"ACCESS_TOKEN_TTL":   "15m",
		"REFRESH_TOKEN_TTL":  "90d",
	}
}

func TestBuild_ConTodasLasObligatorias(t *testing.T) {
	cfg, err := build(newViper(requiredValues()))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Redis.Enabled())
}

func TestBuild_FaltanObligatorias(t *testing.T) {
	values := requiredValues()
	delete(values, "JWT_REFRESH_SECRET")
	delete(values, "ACCESS_TOKEN_TTL")

	_, err := build(newViper(values))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL")
}

func TestBuild_MemoriaNoRequiereBaseDeDatos(t *testing.T) {
	values := requiredValues()
	delete(values, "DATABASE_URL")
	values["STORAGE_DRIVER"] = "memory"

	cfg, err := build(newViper(values))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestBuild_TTLInvalido(t *testing.T) {
	values := requiredValues()
	values["REFRESH_TOKEN_TTL"] = "noventa"

	_, err := build(newViper(values))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_TTL")
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"15m":  15 * time.Minute,
		"1h":   time.Hour,
		"7d":   7 * 24 * time.Hour,
		"3600": time.Hour,
	}
	for raw, want := range cases {
		got, err := ParseTTL(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "abc", "-5m", "0", "xd"} {
		_, err := ParseTTL(raw)
		assert.Error(t, err, raw)
	}
}
