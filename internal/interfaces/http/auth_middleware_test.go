package http_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	apphttp "github.com/jhoicas/CRM-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/CRM-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: resolución de identidad
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CookieResuelveIdentidad(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signup(t, "jane@acme.com")

	resp, env := s.do(t, http.MethodGet, "/api/v1/auth/me", nil, cookies, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "acme-com", me.TenantID)
	assert.Equal(t, entity.RoleSuperAdmin, me.Role)
	assert.Equal(t, "jane@acme.com", me.User.Email)
}

func TestAuthMiddleware_BearerComoAlternativa(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signup(t, "jane@acme.com")

	resp, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", nil, nil, cookie(cookies, apphttp.CookieAccess).Value)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_SinCredencial_Retorna401(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/api/v1/leads", nil, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, domain.CodeAuthTokenMissing, str(env.ErrorCode))
	assert.Equal(t, domain.TypeAuthentication, str(env.Error))
	assert.True(t, len(env.Data) == 0 || string(env.Data) == "null")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/api/v1/leads", nil, nil, "token.invalido.aqui")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_access_token", str(env.Error))
}

func TestAuthMiddleware_TokenVencido_Retorna401Expirado(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signup(t, "jane@acme.com")
	resp, env := s.do(t, http.MethodGet, "/api/v1/auth/me", nil, cookies, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))

	tok, err := pkgjwt.GenerateAccess(testAccessSecret, testIssuer, -time.Minute, me.TenantID, me.UserID, me.Role)
	require.NoError(t, err)

	resp, env = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, nil, tok.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, domain.CodeAccessTokenExpired, str(env.ErrorCode))
	assert.Equal(t, "access_token_expired", str(env.Error))
}

func TestAuthMiddleware_UsuarioInexistente_Retorna401(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "jane@acme.com")

	tok, err := pkgjwt.GenerateAccess(testAccessSecret, testIssuer, time.Minute, "acme-com", "00000000-0000-0000-0000-000000000001", entity.RoleAdmin)
	require.NoError(t, err)

	resp, env := s.do(t, http.MethodGet, "/api/v1/auth/me", nil, nil, tok.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "user_not_found", str(env.Error))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_EmployeeBloqueadoEnRutaAdmin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "jane@acme.com")
	employee := s.signup(t, "john@acme.com")

	resp, env := s.do(t, http.MethodGet, "/api/v1/dashboard/admin", nil, employee, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, domain.CodeInsufficientPerms, str(env.ErrorCode))
	assert.Equal(t, domain.TypeAuthorization, str(env.Error))

	resp, _ = s.do(t, http.MethodGet, "/api/v1/dashboard", nil, employee, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_SuperAdminAccedeATodosLosNiveles(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, "jane@acme.com")

	for path, cards := range map[string]int{
		"/api/v1/dashboard":             1,
		"/api/v1/dashboard/admin":       2,
		"/api/v1/dashboard/super-admin": 3,
	} {
		resp, env := s.do(t, http.MethodGet, path, nil, admin, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		var res dto.DashboardResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Len(t, res.Cards, cards, path)
	}
}

func TestRequireRole_SinAuthMiddleware_Retorna401(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	app.Get("/protected", apphttp.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(newRequest(http.MethodGet, "/protected"), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
