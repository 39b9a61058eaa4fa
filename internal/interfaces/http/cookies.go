package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
)

func sessionCookie(name, value string, maxAge int, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// setSessionCookies escribe ambas credenciales; Max-Age es la vigencia restante de cada una.
func setSessionCookies(c *fiber.Ctx, t dto.TokenPair) {
	c.Cookie(sessionCookie(CookieAccess, t.AccessToken, secondsUntil(t.AccessExpiresAt), t.AccessExpiresAt))
	c.Cookie(sessionCookie(CookieRefresh, t.RefreshToken, secondsUntil(t.RefreshExpiresAt), t.RefreshExpiresAt))
}

// clearSessionCookies vence ambas cookies con los mismos atributos con que se crearon.
func clearSessionCookies(c *fiber.Ctx) {
	past := time.Unix(0, 0)
	c.Cookie(sessionCookie(CookieAccess, "", 0, past))
	c.Cookie(sessionCookie(CookieRefresh, "", 0, past))
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Seconds())
	if s < 1 {
		return 1
	}
	return s
}
