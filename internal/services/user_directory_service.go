package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

type DirectoryUserRepository interface {
	FindByID(userID uint) (models.User, error)
	List(filter models.StatusFilter) ([]models.UserView, error)
	UpdateByID(userID uint, updates map[string]any) error
	DeleteWithReceipts(userID uint) ([]string, error)
}

// UserUpdateInput is a partial update; nil fields are left unchanged.
type UserUpdateInput struct {
	FullName *string `json:"full_name" form:"full_name"`
	Phone    *string `json:"phone" form:"phone"`
	IsAdmin  *bool   `json:"is_admin" form:"is_admin"`
}

type UserDirectoryService struct {
	users DirectoryUserRepository
	files storage.FileStore
}

func NewUserDirectoryService(users DirectoryUserRepository, files storage.FileStore) *UserDirectoryService {
	return &UserDirectoryService{users: users, files: files}
}

func (service *UserDirectoryService) List(actor *Identity, filter models.StatusFilter) ([]models.UserView, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return nil, err
	}
	return service.users.List(filter)
}

func (service *UserDirectoryService) Update(actor *Identity, userID uint, input UserUpdateInput) (models.User, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return models.User{}, err
	}
	if input.FullName == nil && input.Phone == nil && input.IsAdmin == nil {
		return models.User{}, invalidInput("At least one of full_name, phone or is_admin is required")
	}

	updates := make(map[string]any, 3)
	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if fullName == "" {
			return models.User{}, invalidInput("full_name must not be empty")
		}
		if utf8.RuneCountInString(fullName) > 100 {
			return models.User{}, invalidInput("full_name must be at most 100 characters")
		}
		updates["full_name"] = fullName
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if err := ValidatePhone(phone); err != nil {
			return models.User{}, err
		}
		updates["phone"] = phone
	}
	if input.IsAdmin != nil {
		if userID == actor.UserID && !*input.IsAdmin {
			return models.User{}, invalidInput("You cannot revoke your own admin access")
		}
		updates["is_admin"] = *input.IsAdmin
	}

	if _, err := service.findUser(userID); err != nil {
		return models.User{}, err
	}
	if err := service.users.UpdateByID(userID, updates); err != nil {
		return models.User{}, err
	}
	return service.findUser(userID)
}

// Delete removes a non-admin user together with their receipts and then
// their stored files.
func (service *UserDirectoryService) Delete(ctx context.Context, actor *Identity, userID uint) error {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return err
	}
	user, err := service.findUser(userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrAdminUndeletable
	}

	paths, err := service.users.DeleteWithReceipts(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	removeStoredFiles(ctx, service.files, paths)
	return nil
}

func (service *UserDirectoryService) findUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
