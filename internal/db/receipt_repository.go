package db

import (
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"gorm.io/gorm"
)

const receiptViewColumns = `receipts.id, receipts.user_id, receipts.bank_id, receipts.receipt_image_path,
receipts.content_type, receipts.receipt_number, receipts.amount, receipts.description, receipts.upload_date,
receipts.status, receipts.approved_by, receipts.approved_at, receipts.rejection_reason,
banks.bank_name, banks.bank_code, users.username, users.full_name, users.phone,
approver.username AS approved_by_name`

type ReceiptRepository struct {
	database *gorm.DB
}

func NewReceiptRepository(database *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{database: database}
}

func (repo *ReceiptRepository) Create(receipt *models.Receipt) error {
	return repo.database.Create(receipt).Error
}

func (repo *ReceiptRepository) FindByID(receiptID uint) (models.Receipt, error) {
	var receipt models.Receipt
	if err := repo.database.First(&receipt, receiptID).Error; err != nil {
		return models.Receipt{}, err
	}
	return receipt, nil
}

func (repo *ReceiptRepository) ListByOwner(userID uint, window models.TimeWindow) ([]models.ReceiptView, error) {
	query := repo.viewQuery().
		Where("receipts.user_id = ? AND receipts.status <> ?", userID, string(models.ReceiptStatusDeleted))
	query = applyUploadWindow(query, window)

	receipts := make([]models.ReceiptView, 0)
	if err := query.Order("receipts.upload_date DESC, receipts.id DESC").Scan(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

func (repo *ReceiptRepository) List(filter models.StatusFilter) ([]models.ReceiptView, error) {
	query := repo.viewQuery()
	if filter.IsAll() {
		query = query.Where("receipts.status <> ?", string(models.ReceiptStatusDeleted))
	} else {
		query = query.Where("receipts.status = ?", string(filter))
	}

	receipts := make([]models.ReceiptView, 0)
	if err := query.Order("receipts.upload_date DESC, receipts.id DESC").Scan(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// SoftDelete marks a live receipt owned by userID as deleted and reports
// whether a row changed.
func (repo *ReceiptRepository) SoftDelete(receiptID uint, userID uint) (bool, error) {
	result := repo.database.Model(&models.Receipt{}).
		Where("id = ? AND user_id = ? AND status <> ?", receiptID, userID, string(models.ReceiptStatusDeleted)).
		Update("status", models.ReceiptStatusDeleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TransitionStatus moves a pending receipt to status, stamping the acting admin,
// the time and, for rejections, the reason. Zero affected rows means the receipt
// was missing or no longer pending.
func (repo *ReceiptRepository) TransitionStatus(receiptID uint, status models.ReceiptStatus, actorID uint, at time.Time, reason *string) (int64, error) {
	updates := map[string]any{
		"status":      status,
		"approved_by": actorID,
		"approved_at": at,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}

	result := repo.database.Model(&models.Receipt{}).
		Where("id = ? AND status = ?", receiptID, string(models.ReceiptStatusPending)).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (repo *ReceiptRepository) Counts() (models.ReceiptCounts, error) {
	var counts models.ReceiptCounts
	err := repo.database.Raw(`
SELECT
  COUNT(*) AS total,
  COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
  COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
  COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected,
  COUNT(DISTINCT user_id) AS distinct_users,
  COUNT(DISTINCT bank_id) AS distinct_banks,
  COALESCE(SUM(CASE WHEN status IN ('pending', 'approved') THEN amount END), 0) AS total_amount,
  COALESCE(AVG(CASE WHEN status IN ('pending', 'approved') THEN amount END), 0) AS average_amount
FROM receipts
WHERE status <> 'deleted'`).Scan(&counts).Error
	return counts, err
}

func (repo *ReceiptRepository) OwnerCounts(userID uint, window models.TimeWindow) (models.OwnerReceiptCounts, error) {
	query := repo.database.Table("receipts").
		Select(`COUNT(*) AS total,
COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected,
COUNT(DISTINCT bank_id) AS banks_used,
COALESCE(SUM(CASE WHEN status = 'approved' THEN amount END), 0) AS approved_amount`).
		Where("user_id = ? AND status <> ?", userID, string(models.ReceiptStatusDeleted))
	query = applyUploadWindow(query, window)

	var counts models.OwnerReceiptCounts
	if err := query.Scan(&counts).Error; err != nil {
		return models.OwnerReceiptCounts{}, err
	}

	var latest models.Receipt
	latestQuery := repo.database.
		Select("id", "upload_date").
		Where("user_id = ? AND status <> ?", userID, string(models.ReceiptStatusDeleted))
	latestQuery = applyUploadWindow(latestQuery, window)
	result := latestQuery.Order("upload_date DESC, id DESC").Limit(1).Find(&latest)
	if result.Error != nil {
		return models.OwnerReceiptCounts{}, result.Error
	}
	if result.RowsAffected > 0 {
		uploaded := latest.UploadDate
		counts.LastUpload = &uploaded
	}
	return counts, nil
}

func (repo *ReceiptRepository) viewQuery() *gorm.DB {
	return repo.database.Table("receipts").
		Select(receiptViewColumns).
		Joins("JOIN banks ON banks.id = receipts.bank_id").
		Joins("JOIN users ON users.id = receipts.user_id").
		Joins("LEFT JOIN users AS approver ON approver.id = receipts.approved_by")
}

func applyUploadWindow(query *gorm.DB, window models.TimeWindow) *gorm.DB {
	if window.From != nil {
		query = query.Where("receipts.upload_date >= ?", window.From.UTC())
	}
	if window.To != nil {
		query = query.Where("receipts.upload_date < ?", window.To.UTC())
	}
	return query
}
