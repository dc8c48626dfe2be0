package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/security"
	"gorm.io/gorm"
)

const (
	temporaryPasswordLength = 12
	adminSecretQuestion     = "Ask another administrator to reset this account"
)

type AdminAccountRepository interface {
	FindByUsername(username string) (models.User, error)
	Create(user *models.User) error
	UpdateByID(userID uint, updates map[string]any) error
	UpdatePasswordAndRevokeSessions(userID uint, passwordHash string) error
}

// AdminAccountService backs the operator commands that run outside the HTTP
// gate.
type AdminAccountService struct {
	users AdminAccountRepository
	now   func() time.Time
}

func NewAdminAccountService(users AdminAccountRepository) *AdminAccountService {
	return &AdminAccountService{users: users, now: time.Now}
}

// EnsureAdmin creates an approved admin, or promotes and re-keys an existing
// account with the same username. It reports whether a new row was created.
func (service *AdminAccountService) EnsureAdmin(rawUsername string, password string) (bool, error) {
	username := NormalizeUsername(rawUsername)
	if err := ValidateUsername(username); err != nil {
		return false, err
	}
	if err := ValidatePassword(password); err != nil {
		return false, err
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := service.now().UTC()

	user, err := service.users.FindByUsername(username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		answer, err := security.RandomString(32, security.TemporaryPasswordAlphabet)
		if err != nil {
			return false, err
		}
		answerHash, err := security.HashSecretAnswer(answer)
		if err != nil {
			return false, err
		}
		admin := models.User{
			Username:         username,
			FullName:         "Administrator",
			PasswordHash:     passwordHash,
			SecretQuestion:   adminSecretQuestion,
			SecretAnswerHash: answerHash,
			IsAdmin:          true,
			Status:           models.UserStatusApproved,
			CreatedAt:        now,
			ApprovedAt:       &now,
		}
		if err := service.users.Create(&admin); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	if err := service.users.UpdateByID(user.ID, map[string]any{
		"is_admin":    true,
		"status":      models.UserStatusApproved,
		"approved_at": now,
	}); err != nil {
		return false, err
	}
	if err := service.users.UpdatePasswordAndRevokeSessions(user.ID, passwordHash); err != nil {
		return false, err
	}
	return false, nil
}

// ResetToTemporaryPassword assigns a random password, signs the user out
// everywhere and returns the password for one-time display.
func (service *AdminAccountService) ResetToTemporaryPassword(rawUsername string) (string, error) {
	username := NormalizeUsername(rawUsername)
	if username == "" {
		return "", invalidInput("Username is required")
	}
	user, err := service.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", err
	}
	passwordHash, err := security.HashPassword(temporaryPassword)
	if err != nil {
		return "", err
	}
	if err := service.users.UpdatePasswordAndRevokeSessions(user.ID, passwordHash); err != nil {
		return "", err
	}
	return temporaryPassword, nil
}
