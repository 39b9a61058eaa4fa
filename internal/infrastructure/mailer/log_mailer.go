// Package mailer adaptadores de envío de invitaciones.
package mailer

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// LogMailer registra la invitación en el log en vez de enviarla. Es el adaptador por defecto
// mientras no haya un proveedor de correo configurado.
type LogMailer struct {
	log *logger.Logger
}

var _ organization.Mailer = (*LogMailer)(nil)

// NewLogMailer crea el mailer.
func NewLogMailer(log *logger.Logger) *LogMailer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMailer{log: log.Named("mailer")}
}

// SendInvite escribe la invitación en el log.
func (m *LogMailer) SendInvite(ctx context.Context, inv organization.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info().
		Str("email", inv.Email).
		Str("tenant_id", inv.TenantID).
		Str("organization", inv.OrganizationTitle).
		Msg("invitación enviada")
	return nil
}
