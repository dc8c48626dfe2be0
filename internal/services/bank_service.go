package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/ereceipt/internal/models"
	"gorm.io/gorm"
)

const (
	MaxBankNameLength = 100
	MaxBankCodeLength = 20
)

type BankRepository interface {
	ListActive() ([]models.Bank, error)
	ListWithUsage() ([]models.BankUsage, error)
	FindByID(bankID uint) (models.Bank, error)
	NameTaken(name string, excludeID uint) (bool, error)
	Create(bank *models.Bank) error
	UpdateByID(bankID uint, updates map[string]any) error
	DeactivateIfUnused(bankID uint, at time.Time) (bool, error)
}

type BankCreateInput struct {
	Name   string  `json:"bank_name" form:"bank_name" validate:"required,max=100"`
	Code   *string `json:"bank_code" form:"bank_code" validate:"omitempty,max=20"`
	Status string  `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
}

// BankUpdateInput is a partial update; nil fields are left unchanged. An
// empty bank_code clears the code.
type BankUpdateInput struct {
	Name   *string `json:"bank_name" form:"bank_name"`
	Code   *string `json:"bank_code" form:"bank_code"`
	Status *string `json:"status" form:"status"`
}

type BankService struct {
	banks BankRepository
	now   func() time.Time
}

func NewBankService(banks BankRepository) *BankService {
	return &BankService{banks: banks, now: time.Now}
}

func (service *BankService) ListActive() ([]models.Bank, error) {
	return service.banks.ListActive()
}

func (service *BankService) ListAll(actor *Identity) ([]models.BankUsage, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return nil, err
	}
	return service.banks.ListWithUsage()
}

func (service *BankService) Create(actor *Identity, input BankCreateInput) (models.Bank, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return models.Bank{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Code = optionalText(input.Code)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	if input.Name == "" {
		return models.Bank{}, invalidInput("Bank name is required")
	}
	if err := validateInput(input); err != nil {
		return models.Bank{}, err
	}

	status := models.BankStatusActive
	if input.Status != "" {
		status = models.BankStatus(input.Status)
	}

	taken, err := service.banks.NameTaken(input.Name, 0)
	if err != nil {
		return models.Bank{}, err
	}
	if taken {
		return models.Bank{}, ErrBankNameTaken
	}

	bank := models.Bank{
		Name:      input.Name,
		Code:      input.Code,
		Status:    status,
		CreatedAt: service.now().UTC(),
	}
	if err := service.banks.Create(&bank); err != nil {
		if taken, lookupErr := service.banks.NameTaken(input.Name, 0); lookupErr == nil && taken {
			return models.Bank{}, ErrBankNameTaken
		}
		return models.Bank{}, err
	}
	return bank, nil
}

func (service *BankService) Update(actor *Identity, bankID uint, input BankUpdateInput) (models.Bank, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return models.Bank{}, err
	}
	if input.Name == nil && input.Code == nil && input.Status == nil {
		return models.Bank{}, invalidInput("At least one of bank_name, bank_code or status is required")
	}

	updates := make(map[string]any, 3)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return models.Bank{}, invalidInput("Bank name is required")
		}
		if utf8.RuneCountInString(name) > MaxBankNameLength {
			return models.Bank{}, invalidInput("bank_name must be at most %d characters", MaxBankNameLength)
		}
		updates["bank_name"] = name
	}
	if input.Code != nil {
		code := optionalText(input.Code)
		if code != nil && utf8.RuneCountInString(*code) > MaxBankCodeLength {
			return models.Bank{}, invalidInput("bank_code must be at most %d characters", MaxBankCodeLength)
		}
		updates["bank_code"] = code
	}
	if input.Status != nil {
		status, ok := models.ParseBankStatus(*input.Status)
		if !ok {
			return models.Bank{}, invalidInput("status must be one of: active inactive")
		}
		updates["status"] = status
	}

	bank, err := service.findBank(bankID)
	if err != nil {
		return models.Bank{}, err
	}
	if name, ok := updates["bank_name"].(string); ok {
		taken, err := service.banks.NameTaken(name, bankID)
		if err != nil {
			return models.Bank{}, err
		}
		if taken {
			return models.Bank{}, ErrBankNameTaken
		}
	}

	// Switching an active bank to inactive is a soft delete and takes the
	// same in-use guard as Deactivate. It runs before the other columns change.
	if updates["status"] == models.BankStatusInactive && bank.Status != models.BankStatusInactive {
		delete(updates, "status")
		deactivated, err := service.banks.DeactivateIfUnused(bankID, service.now().UTC())
		if err != nil {
			return models.Bank{}, err
		}
		if !deactivated {
			return models.Bank{}, ErrBankInUse
		}
	}

	if len(updates) > 0 {
		if err := service.banks.UpdateByID(bankID, updates); err != nil {
			return models.Bank{}, err
		}
	}
	return service.findBank(bankID)
}

// Deactivate soft-deletes a bank. Banks referenced by live receipts stay
// active.
func (service *BankService) Deactivate(actor *Identity, bankID uint) error {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return err
	}
	if _, err := service.findBank(bankID); err != nil {
		return err
	}
	deactivated, err := service.banks.DeactivateIfUnused(bankID, service.now().UTC())
	if err != nil {
		return err
	}
	if !deactivated {
		return ErrBankInUse
	}
	return nil
}

func (service *BankService) Restore(actor *Identity, bankID uint) (models.Bank, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return models.Bank{}, err
	}
	if _, err := service.findBank(bankID); err != nil {
		return models.Bank{}, err
	}
	if err := service.banks.UpdateByID(bankID, map[string]any{"status": models.BankStatusActive}); err != nil {
		return models.Bank{}, err
	}
	return service.findBank(bankID)
}

func (service *BankService) findBank(bankID uint) (models.Bank, error) {
	bank, err := service.banks.FindByID(bankID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Bank{}, ErrBankNotFound
	}
	return bank, err
}
