package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/security"
	"gorm.io/gorm"
)

type AuthUserRepository interface {
	FindByUsername(username string) (models.User, error)
	ExistsByUsername(username string) (bool, error)
	Create(user *models.User) error
	UpdatePasswordAndRevokeSessions(userID uint, passwordHash string) error
}

type RegistrationInput struct {
	FullName       string `json:"full_name" form:"full_name" validate:"required,max=100"`
	Phone          string `json:"phone" form:"phone" validate:"required,phone"`
	Username       string `json:"username" form:"username" validate:"required,username"`
	Password       string `json:"password" form:"password" validate:"required"`
	SecretQuestion string `json:"secret_question" form:"secret_question" validate:"required,max=255"`
	SecretAnswer   string `json:"secret_answer" form:"secret_answer" validate:"required,max=255"`
}

type LoginInput struct {
	Username   string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type PasswordResetInput struct {
	Username     string `json:"username" form:"username" validate:"required"`
	SecretAnswer string `json:"secret_answer" form:"secret_answer" validate:"required"`
	NewPassword  string `json:"new_password" form:"new_password" validate:"required"`
}

type AuthService struct {
	users AuthUserRepository
	now   func() time.Time
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

// Register creates a pending, non-admin account.
func (service *AuthService) Register(input RegistrationInput) (models.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Username = NormalizeUsername(input.Username)
	input.SecretQuestion = strings.TrimSpace(input.SecretQuestion)
	input.SecretAnswer = strings.TrimSpace(input.SecretAnswer)

	if err := validateInput(input); err != nil {
		return models.User{}, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByUsername(input.Username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}
	answerHash, err := security.HashSecretAnswer(input.SecretAnswer)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:         input.Username,
		FullName:         input.FullName,
		Phone:            input.Phone,
		PasswordHash:     passwordHash,
		SecretQuestion:   input.SecretQuestion,
		SecretAnswerHash: answerHash,
		IsAdmin:          false,
		Status:           models.UserStatusPending,
		CreatedAt:        service.now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		// A concurrent registration may have won the unique index.
		if exists, lookupErr := service.users.ExistsByUsername(input.Username); lookupErr == nil && exists {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks credentials and the approval state of the account.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (service *AuthService) Authenticate(input LoginInput) (models.User, error) {
	username := NormalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		return models.User{}, invalidInput("Username and password are required")
	}

	user, err := service.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		security.BurnPasswordCheck(input.Password)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if security.VerifyPassword(user.PasswordHash, input.Password) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusApproved:
		return user, nil
	case models.UserStatusRejected:
		return models.User{}, ErrAccountRejected
	default:
		return models.User{}, ErrAccountPending
	}
}

func (service *AuthService) SecretQuestion(rawUsername string) (models.User, error) {
	username := NormalizeUsername(rawUsername)
	if username == "" {
		return models.User{}, invalidInput("Username is required")
	}
	user, err := service.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUsernameNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ResetPassword replaces the password after the secret answer matches and
// signs the user out everywhere.
func (service *AuthService) ResetPassword(input PasswordResetInput) error {
	input.Username = NormalizeUsername(input.Username)
	input.SecretAnswer = strings.TrimSpace(input.SecretAnswer)
	if err := validateInput(input); err != nil {
		return err
	}
	if err := ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	user, err := service.users.FindByUsername(input.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUsernameNotFound
	}
	if err != nil {
		return err
	}
	if security.VerifySecretAnswer(user.SecretAnswerHash, input.SecretAnswer) != nil {
		return ErrIncorrectSecretAnswer
	}

	passwordHash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return service.users.UpdatePasswordAndRevokeSessions(user.ID, passwordHash)
}
