package http

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
)

// Locals keys para la identidad resuelta en Fiber.
const (
	LocalIdentity = "identity"
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRole     = "role"
)

// Nombres de las cookies de sesión.
const (
	CookieAccess  = "AccessToken"
	CookieRefresh = "RefreshToken"
)

// accessToken extrae la credencial de acceso: cookie AccessToken o, si no hay, Bearer.
func accessToken(c *fiber.Ctx) string {
	if tok := c.Cookies(CookieAccess); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware resuelve {tenant, usuario, rol} de la credencial de acceso y los deja en
// c.Locals. Ausente, vencida, alterada, revocada o de un usuario inexistente es 401.
func AuthMiddleware(uc *auth.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := accessToken(c)
		if tok == "" {
			return domain.ErrAuthTokenMissing
		}
		id, err := uc.Authenticate(c.UserContext(), tok)
		if err != nil {
			return err
		}
		c.Locals(LocalIdentity, *id)
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalTenantID, id.TenantID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequireRole autoriza solo los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return domain.ErrAuthTokenMissing
		}
		if !slices.Contains(roles, role) {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

// GetIdentity devuelve la identidad resuelta por AuthMiddleware.
func GetIdentity(c *fiber.Ctx) dto.Identity {
	id, _ := c.Locals(LocalIdentity).(dto.Identity)
	return id
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetTenantID devuelve el tenant del contexto (después del middleware de auth).
func GetTenantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTenantID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
