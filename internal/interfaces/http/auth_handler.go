package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
)

// AuthHandler maneja alta, login, rotación, cierre de sesión e identidad.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func device(c *fiber.Ctx) dto.DeviceInfo {
	return dto.DeviceInfo{IP: c.IP(), Device: c.Get(fiber.HeaderUserAgent)}
}

// Signup godoc
// @Summary      Alta de usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "firstName, lastName, email, password"
// @Success      201   {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Signup(c.UserContext(), in, device(c))
	if err != nil {
		return err
	}
	setSessionCookies(c, res.Tokens)
	return respond(c, fiber.StatusCreated, "Usuario registrado correctamente", res.User)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.Envelope{data=dto.LoginResponse}
// @Failure      401   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Login(c.UserContext(), in, device(c))
	if err != nil {
		return err
	}
	setSessionCookies(c, res.Tokens)
	return respond(c, fiber.StatusOK, "Sesión iniciada", auth.ToLoginResponse(res))
}

// refreshToken cookie RefreshToken o, si no hay, refreshToken del cuerpo JSON.
func refreshToken(c *fiber.Ctx) string {
	if tok := c.Cookies(CookieRefresh); tok != "" {
		return tok
	}
	if len(c.Body()) == 0 {
		return ""
	}
	var in dto.RefreshRequest
	if err := c.BodyParser(&in); err != nil {
		return ""
	}
	return in.RefreshToken
}

// Refresh godoc
// @Summary      Rotar credenciales
// @Description  Canjea el refresh token (de un solo uso) por un par nuevo.
// @Tags         auth
// @Produce      json
// @Success      200   {object}  dto.Envelope{data=dto.LoginResponse}
// @Failure      401   {object}  dto.Envelope
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	res, err := h.uc.Refresh(c.UserContext(), refreshToken(c), device(c))
	if err != nil {
		return err
	}
	setSessionCookies(c, res.Tokens)
	return respond(c, fiber.StatusOK, "Credenciales renovadas", auth.ToLoginResponse(res))
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Success      200   {object}  dto.Envelope
// @Failure      401   {object}  dto.Envelope
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), accessToken(c), refreshToken(c)); err != nil {
		return err
	}
	clearSessionCookies(c)
	return respond(c, fiber.StatusOK, "Sesión cerrada", nil)
}

// Me godoc
// @Summary      Identidad de la sesión
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  dto.Envelope{data=dto.MeResponse}
// @Failure      401   {object}  dto.Envelope
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := GetIdentity(c)
	if id.UserID == "" {
		return domain.ErrAuthTokenMissing
	}
	res, err := h.uc.Me(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Datos obtenidos correctamente", res)
}
