package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

func TestLogMailer_EscribeLaInvitacion(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logger.New(logger.Config{Env: "production", Level: "info", Out: &buf}))

	err := m.SendInvite(context.Background(), organization.Invitation{
		Email: "ana@acme.com", TenantID: "acme-com", OrganizationTitle: "Acme",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"email":"ana@acme.com"`)
	assert.Contains(t, buf.String(), `"component":"mailer"`)
}

func TestLogMailer_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLogMailer(nil).SendInvite(ctx, organization.Invitation{Email: "ana@acme.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
