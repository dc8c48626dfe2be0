package db

import (
	"strings"
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	if err := repo.database.
		Where("lower(username) = ?", normalizeLookup(username)).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(username) = ?", normalizeLookup(username)).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdateByID(userID uint, updates map[string]any) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash": passwordHash,
	}).Error
}

// UpdatePasswordAndRevokeSessions replaces the password hash and drops every
// session of the user in one transaction.
func (repo *UserRepository) UpdatePasswordAndRevokeSessions(userID uint, passwordHash string) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"password_hash": passwordHash,
		}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
	})
}

// TransitionStatus moves a pending user to status and records the acting admin.
// It returns the number of rows changed; zero means the user was missing or no
// longer pending.
func (repo *UserRepository) TransitionStatus(userID uint, status models.UserStatus, actorID uint, at time.Time) (int64, error) {
	result := repo.database.Model(&models.User{}).
		Where("id = ? AND status = ?", userID, models.UserStatusPending).
		Updates(map[string]any{
			"status":      status,
			"approved_by": actorID,
			"approved_at": at,
		})
	return result.RowsAffected, result.Error
}

func (repo *UserRepository) List(filter models.StatusFilter) ([]models.UserView, error) {
	query := repo.database.Table("users").
		Select(`users.id, users.username, users.full_name, users.phone, users.is_admin, users.status,
users.created_at, users.approved_at, users.approved_by, approver.username AS approved_by_username`).
		Joins("LEFT JOIN users AS approver ON approver.id = users.approved_by")
	if !filter.IsAll() {
		query = query.Where("users.status = ?", string(filter))
	}

	users := make([]models.UserView, 0)
	if err := query.Order("users.created_at DESC, users.id DESC").Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) Counts() (models.UserCounts, error) {
	var counts models.UserCounts
	err := repo.database.Raw(`
SELECT
  COUNT(*) AS total,
  COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
  COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
  COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected,
  COALESCE(SUM(CASE WHEN is_admin THEN 1 ELSE 0 END), 0) AS admins
FROM users`).Scan(&counts).Error
	return counts, err
}

// DeleteWithReceipts removes the user, their sessions and their receipts, and
// returns the stored file paths of the removed receipts.
func (repo *UserRepository) DeleteWithReceipts(userID uint) ([]string, error) {
	var paths []string
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Receipt{}).
			Where("user_id = ?", userID).
			Pluck("receipt_image_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Receipt{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func normalizeLookup(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
