package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/ereceipt/internal/models"
	"gorm.io/gorm"
)

const MaxRejectionReasonLength = 500

type ApprovalUserRepository interface {
	FindByID(userID uint) (models.User, error)
	TransitionStatus(userID uint, status models.UserStatus, actorID uint, at time.Time) (int64, error)
}

type ApprovalReceiptRepository interface {
	FindByID(receiptID uint) (models.Receipt, error)
	TransitionStatus(receiptID uint, status models.ReceiptStatus, actorID uint, at time.Time, reason *string) (int64, error)
}

// ApprovalService moves users and receipts out of pending. Each transition is
// a single guarded update, so of two concurrent admins exactly one wins.
type ApprovalService struct {
	users    ApprovalUserRepository
	receipts ApprovalReceiptRepository
	now      func() time.Time
}

func NewApprovalService(users ApprovalUserRepository, receipts ApprovalReceiptRepository) *ApprovalService {
	return &ApprovalService{users: users, receipts: receipts, now: time.Now}
}

func (service *ApprovalService) ApproveUser(actor *Identity, userID uint) error {
	return service.transitionUser(actor, userID, models.UserStatusApproved)
}

func (service *ApprovalService) RejectUser(actor *Identity, userID uint) error {
	return service.transitionUser(actor, userID, models.UserStatusRejected)
}

func (service *ApprovalService) ApproveReceipt(actor *Identity, receiptID uint) error {
	return service.transitionReceipt(actor, receiptID, models.ReceiptStatusApproved, nil)
}

func (service *ApprovalService) RejectReceipt(actor *Identity, receiptID uint, rawReason string) error {
	reason, err := NormalizeRejectionReason(rawReason)
	if err != nil {
		return err
	}
	return service.transitionReceipt(actor, receiptID, models.ReceiptStatusRejected, &reason)
}

// NormalizeRejectionReason trims the reason and substitutes the default for
// an empty one.
func NormalizeRejectionReason(raw string) (string, error) {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return models.DefaultRejectionReason, nil
	}
	if utf8.RuneCountInString(reason) > MaxRejectionReasonLength {
		return "", invalidInput("reason must be at most %d characters", MaxRejectionReasonLength)
	}
	return reason, nil
}

func (service *ApprovalService) transitionUser(actor *Identity, userID uint, status models.UserStatus) error {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return err
	}
	changed, err := service.users.TransitionStatus(userID, status, actor.UserID, service.now().UTC())
	if err != nil {
		return err
	}
	if changed > 0 {
		return nil
	}

	if _, err := service.users.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return ErrUserAlreadyProcessed
}

func (service *ApprovalService) transitionReceipt(actor *Identity, receiptID uint, status models.ReceiptStatus, reason *string) error {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return err
	}
	changed, err := service.receipts.TransitionStatus(receiptID, status, actor.UserID, service.now().UTC(), reason)
	if err != nil {
		return err
	}
	if changed > 0 {
		return nil
	}

	receipt, err := service.receipts.FindByID(receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReceiptNotFound
		}
		return err
	}
	if receipt.Status == models.ReceiptStatusDeleted {
		return ErrReceiptNotFound
	}
	return ErrReceiptAlreadyProcessed
}
