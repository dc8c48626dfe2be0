package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/services"
)

// setSessionCookie stores the session token. Without remember_me the cookie
// lives for the browser session only; the server-side expiry still applies.
func (handler *Handler) setSessionCookie(c *fiber.Ctx, session services.IssuedSession, rememberMe bool) {
	cookie := &fiber.Cookie{
		Name:     authCookieName,
		Value:    session.Token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	}
	if rememberMe {
		cookie.Expires = session.ExpiresAt
	}
	c.Cookie(cookie)
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
