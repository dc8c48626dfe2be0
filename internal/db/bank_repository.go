package db

import (
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"gorm.io/gorm"
)

type BankRepository struct {
	database *gorm.DB
}

func NewBankRepository(database *gorm.DB) *BankRepository {
	return &BankRepository{database: database}
}

func (repo *BankRepository) ListActive() ([]models.Bank, error) {
	banks := make([]models.Bank, 0)
	if err := repo.database.
		Where("status = ?", string(models.BankStatusActive)).
		Order("bank_name ASC").
		Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (repo *BankRepository) ListWithUsage() ([]models.BankUsage, error) {
	banks := make([]models.BankUsage, 0)
	err := repo.database.Table("banks").
		Select(`banks.id, banks.bank_name, banks.bank_code, banks.status, banks.created_at, banks.updated_at,
(SELECT COUNT(*) FROM receipts WHERE receipts.bank_id = banks.id AND receipts.status <> ?) AS receipt_count`,
			string(models.ReceiptStatusDeleted)).
		Order("banks.bank_name ASC").
		Scan(&banks).Error
	if err != nil {
		return nil, err
	}
	return banks, nil
}

func (repo *BankRepository) FindByID(bankID uint) (models.Bank, error) {
	var bank models.Bank
	if err := repo.database.First(&bank, bankID).Error; err != nil {
		return models.Bank{}, err
	}
	return bank, nil
}

// NameTaken reports whether another bank already uses name, ignoring case.
// excludeID skips the bank being updated; pass 0 on create.
func (repo *BankRepository) NameTaken(name string, excludeID uint) (bool, error) {
	query := repo.database.Model(&models.Bank{}).Where("lower(bank_name) = ?", normalizeLookup(name))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var matched int64
	if err := query.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *BankRepository) Create(bank *models.Bank) error {
	return repo.database.Create(bank).Error
}

func (repo *BankRepository) UpdateByID(bankID uint, updates map[string]any) error {
	return repo.database.Model(&models.Bank{}).Where("id = ?", bankID).Updates(updates).Error
}

// DeactivateIfUnused marks the bank inactive unless a live receipt references
// it. The check and the update are one statement.
func (repo *BankRepository) DeactivateIfUnused(bankID uint, at time.Time) (bool, error) {
	result := repo.database.Exec(`
UPDATE banks SET status = ?, updated_at = ?
WHERE id = ? AND NOT EXISTS (
  SELECT 1 FROM receipts WHERE receipts.bank_id = ? AND receipts.status <> ?
)`,
		string(models.BankStatusInactive), at, bankID, bankID, string(models.ReceiptStatusDeleted))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
