package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf}).Named("tenancy")

	l.Info().Str("partition", "acme-com_leads").Msg("partición registrada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tenancy", entry["component"])
	assert.Equal(t, "acme-com_leads", entry["partition"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("no aparece")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("aparece")
	assert.NotZero(t, buf.Len())
}

func TestNew_ServicioYTenant(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Service: "crm-api", Out: &buf}).Tenant("acme-com")

	l.Info().Msg("hola")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "crm-api", entry["service"])
	assert.Equal(t, "acme-com", entry["tenant_id"])
}
