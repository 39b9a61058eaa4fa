package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/internal/domain/schema"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/validator"
)

// AccessRevocations lista de credenciales de acceso revocadas antes de vencer (logout).
type AccessRevocations interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthUseCase casos de uso de sesión: signup, login, refresh, logout y verificación.
type AuthUseCase struct {
	reg     *tenancy.Registry
	issuer  *CredentialIssuer
	store   *RefreshStore
	revoked AccessRevocations
	log     *logger.Logger
}

// NewAuthUseCase construye el caso de uso. revoked puede ser nil (sin Redis).
func NewAuthUseCase(reg *tenancy.Registry, issuer *CredentialIssuer, revoked AccessRevocations, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		reg:     reg,
		issuer:  issuer,
		store:   NewRefreshStore(reg),
		revoked: revoked,
		log:     log.Named("auth"),
	}
}

// Issuer firmador de credenciales (vencimientos para las cookies).
func (uc *AuthUseCase) Issuer() *CredentialIssuer { return uc.issuer }

// HashPassword bcrypt con costo por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewServer(err)
	}
	return string(hash), nil
}

// tenantFromEmail resuelve dominio y tenant a partir del email.
func tenantFromEmail(email string) (domainName, tenantID string, err error) {
	domainName = entity.DomainFromEmail(email)
	tenantID = entity.TenantIDFromDomain(domainName)
	if domainName == "" || !schema.ValidTenantID(tenantID) {
		return "", "", domain.NewValidation("el dominio del email no es válido")
	}
	return domainName, tenantID, nil
}

// Signup crea el usuario en la partición del tenant derivado del dominio del email.
// El rol no se toma del cliente: el primer usuario de un dominio crea la organización y queda
// como super_admin; los siguientes quedan como employee.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest, device dto.DeviceInfo) (*dto.SessionResult, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	domainName, tenantID, err := tenantFromEmail(email)
	if err != nil {
		return nil, err
	}

	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	invites, err := uc.reg.Invites(ctx)
	if err != nil {
		return nil, err
	}
	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.reg.RefreshTokens(ctx, tenantID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleEmployee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var tokens dto.TokenPair
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		if err := orgs.Lock(ctx, "domain:"+domainName); err != nil {
			return err
		}
		org, err := orgs.FindOne(ctx, repository.Eq("domain", domainName))
		if err != nil {
			return err
		}
		if org == nil {
			user.Role = entity.RoleSuperAdmin
			org = &entity.Organization{
				ID:        uuid.NewString(),
				TenantID:  tenantID,
				Domain:    domainName,
				AdminID:   user.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := orgs.Insert(ctx, org.ID, org); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return domain.ErrOrgExists
				}
				return err
			}
		}

		existing, err := users.FindOne(ctx, repository.Eq("email", email))
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailExists
		}
		if err := users.Insert(ctx, user.ID, user); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrEmailExists
			}
			return err
		}
		if err := acceptInvite(ctx, invites, tenantID, email, now); err != nil {
			return err
		}

		tokens, err = uc.issuer.Issue(tenantID, user.ID, user.Role)
		if err != nil {
			return err
		}
		return uc.store.Save(ctx, tenantID, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt, device)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("tenant_id", tenantID).Str("user_id", user.ID).Str("role", user.Role).Msg("usuario registrado")
	return &dto.SessionResult{Tokens: tokens, User: ToUserResponse(tenantID, user)}, nil
}

// acceptInvite marca como aceptada la invitación abierta del email, si existe.
func acceptInvite(ctx context.Context, invites *tenancy.Partition[entity.OrganizationInvite], tenantID, email string, now time.Time) error {
	inv, err := invites.FindOne(ctx, repository.Eq("email", email).And("tenantId", repository.OpEq, tenantID))
	if err != nil || inv == nil || inv.Status == entity.InviteAccepted {
		return err
	}
	inv.Status = entity.InviteAccepted
	inv.UpdatedAt = now
	_, err = invites.Replace(ctx, inv.ID, inv)
	return err
}

// Login resuelve el tenant por el dominio del email y compara la contraseña.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, device dto.DeviceInfo) (*dto.SessionResult, error) {
	if err := validator.Struct(&in); err != nil {
		return nil, domain.NewValidation(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	domainName, tenantID, err := tenantFromEmail(email)
	if err != nil {
		return nil, err
	}

	orgs, err := uc.reg.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	org, err := orgs.FindOne(ctx, repository.Eq("domain", domainName))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrgNotFound
	}
	if org.TenantID != "" {
		tenantID = org.TenantID
	}

	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	user, err := users.FindOne(ctx, repository.Eq("email", email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidPassword
	}

	tokens, err := uc.issuer.Issue(tenantID, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, tenantID, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt, device); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("tenant_id", tenantID).Str("user_id", user.ID).Msg("login")
	return &dto.SessionResult{Tokens: tokens, User: ToUserResponse(tenantID, user)}, nil
}

// Refresh rota la credencial de refresco: el registro almacenado se consume (borra) y se
// emite un par nuevo con el rol vigente del usuario. Un segundo canje del mismo token falla
// con ErrRefreshInvalid.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string, device dto.DeviceInfo) (*dto.SessionResult, error) {
	tenantID, userID, err := uc.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	users, err := uc.reg.Users(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.reg.RefreshTokens(ctx, tenantID); err != nil {
		return nil, err
	}

	var (
		tokens dto.TokenPair
		user   *entity.User
	)
	err = uc.reg.WithTx(ctx, func(ctx context.Context) error {
		rec, err := uc.store.Consume(ctx, tenantID, refreshToken)
		if err != nil {
			return err
		}
		if rec == nil || rec.User != userID {
			return domain.ErrRefreshInvalid
		}
		user, err = users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		tokens, err = uc.issuer.Issue(tenantID, user.ID, user.Role)
		if err != nil {
			return err
		}
		return uc.store.Save(ctx, tenantID, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt, device)
	})
	if err != nil {
		return nil, err
	}
	return &dto.SessionResult{Tokens: tokens, User: ToUserResponse(tenantID, user)}, nil
}

// Logout revoca la credencial de refresco almacenada y, si hay lista de revocación, la de
// acceso por el tiempo que le queda. Los fallos se registran pero no impiden cerrar la sesión.
func (uc *AuthUseCase) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return domain.ErrAuthTokenMissing
	}
	if refreshToken != "" {
		if tenantID, _, err := uc.issuer.VerifyRefresh(refreshToken); err == nil {
			if _, err := uc.store.Revoke(ctx, tenantID, refreshToken); err != nil {
				uc.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudo revocar el refresh token")
			}
		}
	}
	if accessToken != "" && uc.revoked != nil {
		if jti, exp, ok := uc.issuer.accessClaimsIgnoringExpiry(accessToken); ok && jti != "" {
			if ttl := time.Until(exp); ttl > 0 {
				if err := uc.revoked.Revoke(ctx, jti, ttl); err != nil {
					uc.log.Warn().Err(err).Str("jti", jti).Msg("no se pudo revocar el access token")
				}
			}
		}
	}
	return nil
}

// Authenticate verifica la credencial de acceso y que el usuario siga existiendo en su tenant.
func (uc *AuthUseCase) Authenticate(ctx context.Context, accessToken string) (*dto.Identity, error) {
	id, err := uc.issuer.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if uc.revoked != nil && id.TokenID != "" {
		revoked, err := uc.revoked.IsRevoked(ctx, id.TokenID)
		if err != nil {
			return nil, domain.NewServer(err)
		}
		if revoked {
			return nil, domain.ErrAccessInvalid
		}
	}
	users, err := uc.reg.Users(ctx, id.TenantID)
	if err != nil {
		return nil, err
	}
	user, err := users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return id, nil
}

// Me identidad de la sesión con el perfil actual del usuario.
func (uc *AuthUseCase) Me(ctx context.Context, id dto.Identity) (*dto.MeResponse, error) {
	users, err := uc.reg.Users(ctx, id.TenantID)
	if err != nil {
		return nil, err
	}
	user, err := users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &dto.MeResponse{Identity: id, User: ToUserResponse(id.TenantID, user)}, nil
}

// ToUserResponse proyección sin hash de contraseña.
func ToUserResponse(tenantID string, u *entity.User) dto.UserResponse {
	var img *string
	if u.ProfileImage != "" {
		v := u.ProfileImage
		img = &v
	}
	return dto.UserResponse{
		ID:           u.ID,
		TenantID:     tenantID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         u.Role,
		ProfileImage: img,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ToLoginResponse respuesta del login/refresh con tokens y perfil.
func ToLoginResponse(s *dto.SessionResult) dto.LoginResponse {
	return dto.LoginResponse{
		AccessToken:    s.Tokens.AccessToken,
		RefreshToken:   s.Tokens.RefreshToken,
		ProfilePicture: s.User.ProfileImage,
		FirstName:      s.User.FirstName,
		LastName:       s.User.LastName,
		Email:          s.User.Email,
		Role:           s.User.Role,
	}
}
