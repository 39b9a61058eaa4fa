// Package organization registra organizaciones (tenants) y gestiona sus invitaciones.
package organization

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

// Invitation datos que recibe el Mailer para una invitación.
type Invitation struct {
	Email             string
	TenantID          string
	OrganizationTitle string
	Domain            string
}

// Mailer entrega invitaciones; la implementación real (SMTP, API) es externa.
type Mailer interface {
	SendInvite(ctx context.Context, inv Invitation) error
}

// OrganizationUseCase registro de organizaciones e invitaciones.
type OrganizationUseCase struct {
	reg    *tenancy.Registry
	mailer Mailer
	log    *logger.Logger
}

// NewOrganizationUseCase construye el caso de uso.
func NewOrganizationUseCase(reg *tenancy.Registry, mailer Mailer, log *logger.Logger) *OrganizationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrganizationUseCase{reg: reg, mailer: mailer, log: log.Named("organization")}
}

func domainAndTenant(email string) (string, string, error) {
	d := entity.DomainFromEmail(email)
	t := entity.TenantIDFromDomain(d)
	if d == "" || !schema.ValidTenantID(t) {
		return "", "", domain.NewValidation("el dominio del email no es válido")
	}
	return d, t, nil
}

// takenFilter organizaciones que ya ocupan el dominio o el tenant derivado de él.
func takenFilter(domainName, tenantID string) repository.Filter {
	return repository.Filter{}.
		OrAny("domain", repository.OpEq, domainName).
		OrAny("tenantId", repository.OpEq, tenantID)
}

// Verify informa si el dominio del email ya tiene organización. Existente es ErrOrgExists.
func (uc *OrganizationUseCase) Verify(ctx context.Context, in dto.VerifyOrganizationRequest) (*dto.VerifyOrganizationResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	domainName, tenantID, err := domainAndTenant(entity.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	n, err := orgs.Count(ctx, takenFilter(domainName, tenantID))
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrOrgExists
	}
	return &dto.VerifyOrganizationResponse{OrganizationExists: false}, nil
}

// Register crea la organización y su super_admin en una transacción.
func (uc *OrganizationUseCase) Register(ctx context.Context, in dto.RegisterOrganizationRequest) (*dto.RegisterOrganizationResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	email := entity.NormalizeEmail(in.Email)
	domainName, tenantID, err := domainAndTenant(email)
	if err != nil {
		return nil, err
	}
	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	admin := &entity.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	org := &entity.Organization{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Title:     strings.TrimSpace(in.Title),
		Domain:    domainName,
		AdminID:   admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		if err := orgs.Lock(ctx, "domain:"+domainName); err != nil {
			return err
		}
		n, err := orgs.Count(ctx, takenFilter(domainName, tenantID))
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrOrgExists
		}
		if err := users.Insert(ctx, admin.ID, admin); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrEmailExists
			}
			return err
		}
		if err := orgs.Insert(ctx, org.ID, org); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrOrgExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("tenant_id", tenantID).Str("domain", domainName).Msg("organización registrada")
	return &dto.RegisterOrganizationResponse{
		Organization: ToResponse(org),
		Admin:        auth.ToUserResponse(tenantID, admin),
	}, nil
}

// Invite crea invitaciones not_sent para emails del dominio del tenant y las intenta enviar.
// Un email que ya tiene invitación la reutiliza; uno que ya es usuario es conflicto.
func (uc *OrganizationUseCase) Invite(ctx context.Context, tenantID, inviterID string, in dto.InviteUsersRequest) ([]dto.InviteResponse, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	org, err := orgs.FindOne(ctx, repository.Eq("tenantId", tenantID))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrgNotFound
	}
	invites, err := uc.reg.Invites(ctx)
	if err != nil {
		return nil, err
	}
	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(in.Users))
	seen := map[string]bool{}
	for _, raw := range in.Users {
		email := entity.NormalizeEmail(raw)
		if seen[email] {
			continue
		}
		seen[email] = true
		if entity.DomainFromEmail(email) != org.Domain {
			return nil, domain.NewValidation("solo se puede invitar emails del dominio " + org.Domain)
		}
		emails = append(emails, email)
	}

	now := time.Now().UTC()
	var pending []*entity.OrganizationInvite
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		if err := invites.Lock(ctx, emails...); err != nil {
			return err
		}
		for _, email := range emails {
			n, err := users.Count(ctx, repository.Eq("email", email))
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrEmailExists
			}
			inv, err := invites.FindOne(ctx, repository.Eq("email", email))
			if err != nil {
				return err
			}
			if inv == nil {
				inv = &entity.OrganizationInvite{
					ID:         uuid.NewString(),
					Email:      email,
					TenantID:   tenantID,
					InvitedBy:  inviterID,
					Status:     entity.InviteNotSent,
					MaxRetries: entity.DefaultInviteMaxRetries,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if err := invites.Insert(ctx, inv.ID, inv); err != nil {
					if errors.Is(err, domain.ErrDuplicate) {
						return domain.NewConflict(domain.CodeEmailExists, "el email ya tiene una invitación")
					}
					return err
				}
			} else if inv.TenantID != tenantID {
				return domain.NewConflict(domain.CodeEmailExists, "el email ya tiene una invitación")
			}
			pending = append(pending, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.InviteResponse, 0, len(pending))
	for _, inv := range pending {
		if inv.CanRetry() {
			uc.deliver(ctx, invites, org, inv)
		}
		out = append(out, ToInviteResponse(inv))
	}
	return out, nil
}

// Dispatch reintenta las invitaciones not_sent que aún tienen intentos disponibles.
func (uc *OrganizationUseCase) Dispatch(ctx context.Context) (*dto.DispatchResult, error) {
	invites, err := uc.reg.Invites(ctx)
	if err != nil {
		return nil, err
	}
	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := invites.Find(ctx, repository.Eq("status", entity.InviteNotSent), repository.FindOptions{})
	if err != nil {
		return nil, err
	}

	res := &dto.DispatchResult{}
	byTenant := map[string]*entity.Organization{}
	for _, inv := range rows {
		if !inv.CanRetry() {
			continue
		}
		org, ok := byTenant[inv.TenantID]
		if !ok {
			org, err = orgs.FindOne(ctx, repository.Eq("tenantId", inv.TenantID))
			if err != nil {
				return res, err
			}
			byTenant[inv.TenantID] = org
		}
		if org == nil {
			continue
		}
		res.Attempted++
		if uc.deliver(ctx, invites, org, inv) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	uc.log.Info().Int("attempted", res.Attempted).Int("sent", res.Sent).Int("failed", res.Failed).Msg("envío de invitaciones")
	return res, nil
}

// deliver envía una invitación y registra el intento. Devuelve true si quedó enviada.
func (uc *OrganizationUseCase) deliver(ctx context.Context, invites *tenancy.Partition[entity.OrganizationInvite], org *entity.Organization, inv *entity.OrganizationInvite) bool {
	now := time.Now().UTC()
	inv.LastTried = now
	inv.UpdatedAt = now

	var sendErr error
	if uc.mailer == nil {
		sendErr = errors.New("sin mailer configurado")
	} else {
		sendErr = uc.mailer.SendInvite(ctx, Invitation{
			Email:             inv.Email,
			TenantID:          inv.TenantID,
			OrganizationTitle: org.Title,
			Domain:            org.Domain,
		})
	}
	if sendErr != nil {
		inv.RetryCount++
		inv.LastError = sendErr.Error()
		uc.log.Warn().Err(sendErr).Str("email", inv.Email).Int("retry_count", inv.RetryCount).Msg("no se pudo enviar la invitación")
	} else {
		inv.Status = entity.InviteSent
		inv.LastError = ""
	}
	if _, err := invites.Replace(ctx, inv.ID, inv); err != nil {
		uc.log.Error().Err(err).Str("invite_id", inv.ID).Msg("no se pudo registrar el intento de envío")
	}
	return sendErr == nil
}

// ToResponse proyección de la organización.
func ToResponse(o *entity.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        o.ID,
		TenantID:  o.TenantID,
		Title:     o.Title,
		Domain:    o.Domain,
		Admin:     o.AdminID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ToInviteResponse proyección de la invitación.
func ToInviteResponse(i *entity.OrganizationInvite) dto.InviteResponse {
	return dto.InviteResponse{
		ID:         i.ID,
		Email:      i.Email,
		Status:     i.Status,
		RetryCount: i.RetryCount,
		MaxRetries: i.MaxRetries,
		LastTried:  i.LastTried,
	}
}
