package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/services"
)

type forgotPasswordInput struct {
	Username string `json:"username" form:"username"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input services.RegistrationInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	user, err := handler.authService.Register(input)
	if err != nil {
		return respondServiceError(c, err, "Registration failed. Please try again.")
	}

	return respondSuccess(c, fiber.StatusCreated, "Registration successful! Your account is pending admin approval.", fiber.Map{
		"user_id":  user.ID,
		"username": user.Username,
		"status":   user.Status,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := time.Now()
	if handler.loginLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	}

	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	user, err := handler.authService.Authenticate(input)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		handler.loginLimiter.addFailure(limiterKey, limiterSubject(input.Username), now)
		return respondServiceError(c, err, "")
	case errors.Is(err, services.ErrAccountPending):
		return respondAccountState(c, err, models.UserStatusPending)
	case errors.Is(err, services.ErrAccountRejected):
		return respondAccountState(c, err, models.UserStatusRejected)
	case err != nil:
		return respondServiceError(c, err, "Login failed. Please try again.")
	}
	handler.loginLimiter.forget(limiterKey, limiterSubject(input.Username))

	session, err := handler.sessionService.Issue(user, input.RememberMe, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return respondServiceError(c, err, "Login failed. Please try again.")
	}
	handler.setSessionCookie(c, session, input.RememberMe)

	return respondSuccess(c, fiber.StatusOK, "Login successful", user.Profile())
}

func respondAccountState(c *fiber.Ctx, err error, status models.UserStatus) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"message": services.PublicMessage(err, ""),
		"data":    fiber.Map{"status": status},
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	if identity != nil {
		if err := handler.sessionService.Revoke(identity.SessionID); err != nil {
			return respondServiceError(c, err, "Logout failed. Please try again.")
		}
	}
	handler.clearSessionCookie(c)
	return respondSuccess(c, fiber.StatusOK, "Logout successful", nil)
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	if identity == nil {
		return respondServiceError(c, services.ErrSessionInvalid, "")
	}
	return respondSuccess(c, fiber.StatusOK, "Profile retrieved", identity.Profile())
}

func (handler *Handler) ForgotPassword(c *fiber.Ctx) error {
	var input forgotPasswordInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	user, err := handler.authService.SecretQuestion(input.Username)
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve secret question")
	}

	return respondSuccess(c, fiber.StatusOK, "Secret question retrieved", fiber.Map{
		"username":        user.Username,
		"secret_question": user.SecretQuestion,
	})
}

func (handler *Handler) ResetPassword(c *fiber.Ctx) error {
	var input services.PasswordResetInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	limiterKey := recoveryLimiterKey(c, input.Username)
	now := time.Now()
	if handler.recoveryLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "Too many password reset attempts. Please try again later.")
	}

	err := handler.authService.ResetPassword(input)
	switch {
	case errors.Is(err, services.ErrIncorrectSecretAnswer), errors.Is(err, services.ErrUsernameNotFound):
		handler.recoveryLimiter.addFailure(limiterKey, "", now)
		return respondServiceError(c, err, "")
	case err != nil:
		return respondServiceError(c, err, "Password reset failed. Please try again.")
	}
	handler.recoveryLimiter.reset(limiterKey)

	return respondSuccess(c, fiber.StatusOK, "Password reset successful. You can now login with your new password.", nil)
}
