package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/calllog"
	"github.com/jhoicas/CRM-api/internal/application/leads"
	"github.com/jhoicas/CRM-api/internal/application/organization"
	"github.com/jhoicas/CRM-api/internal/application/pipeline"
	"github.com/jhoicas/CRM-api/internal/application/tenancy"
	"github.com/jhoicas/CRM-api/internal/infrastructure/memory"
	"github.com/jhoicas/CRM-api/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/CRM-api/internal/interfaces/http"
	"github.com/jhoicas/CRM-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testAccessSecret  = "test-access-secret-for-unit-tests"
	testRefreshSecret = "test-refresh-secret-for-unit-tests"
	testIssuer        = "crm-api-test"
)

// envelope cuerpo de respuesta con data sin decodificar.
type envelope struct {
	Message   string          `json:"message"`
	ErrorCode *string         `json:"errorCode"`
	Error     *string         `json:"error"`
	Data      json.RawMessage `json:"data"`
}

type testServer struct {
	app *fiber.App
	reg *tenancy.Registry
	mr  *miniredis.Miniredis
}

// newTestServer arma la API completa sobre el motor en memoria y un Redis de prueba.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	reg := tenancy.NewRegistry(memory.NewEngine(), nil)
	issuer := auth.NewCredentialIssuer(auth.JWTConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        testIssuer,
	})
	deny := redis.NewDenylist(redis.NewClient(config.RedisConfig{Addr: mr.Addr()}))

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         auth.NewAuthUseCase(reg, issuer, deny, nil),
		OrganizationUC: organization.NewOrganizationUseCase(reg, nil, nil),
		LeadUC:         leads.NewLeadUseCase(reg, nil),
		PipelineUC:     pipeline.NewPipelineUseCase(reg, nil),
		CallLogUC:      calllog.NewCallLogUseCase(reg, nil),
		DashboardUC:    analytics.NewDashboardUseCase(reg, nil),
	})
	return &testServer{app: app, reg: reg, mr: mr}
}

// do lanza la petición con cuerpo JSON opcional y cookies o Bearer.
func (s *testServer) do(t *testing.T, method, path string, body any, cookies []*http.Cookie, bearer string) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

// signup registra un usuario y devuelve las cookies de sesión.
func (s *testServer) signup(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"firstName": "Jane", "lastName": "Doe", "email": email, "password": "Str0ng!Pass",
	}, nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	return resp.Cookies()
}

func cookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
