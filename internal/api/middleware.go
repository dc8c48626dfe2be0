package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/services"
)

const contextIdentityKey = "identity"

// AuthRequired resolves the session cookie into an identity. Every request
// reloads the user, so a rejected or deleted account loses access at once.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	token := c.Cookies(authCookieName)
	identity, err := handler.sessionService.Authenticate(token)
	if err != nil {
		if token != "" {
			handler.clearSessionCookie(c)
		}
		return respondServiceError(c, err, "Authentication failed")
	}

	c.Locals(contextIdentityKey, &identity)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	if err := services.Authorize(currentIdentity(c), services.RoleAdmin); err != nil {
		return respondServiceError(c, err, "")
	}
	return c.Next()
}

func currentIdentity(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(contextIdentityKey).(*services.Identity)
	return identity
}
