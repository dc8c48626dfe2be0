package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultRejectionReason = "No reason provided"

type Receipt struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	UserID          uint                `gorm:"not null;index" json:"user_id"`
	BankID          uint                `gorm:"not null;index" json:"bank_id"`
	ImagePath       string              `gorm:"column:receipt_image_path;size:255;not null" json:"receipt_image_path"`
	ContentType     string              `gorm:"size:100;not null" json:"content_type"`
	ReceiptNumber   *string             `gorm:"size:100" json:"receipt_number"`
	Amount          decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"amount"`
	Description     *string             `json:"description"`
	UploadDate      time.Time           `gorm:"not null;index" json:"upload_date"`
	Status          ReceiptStatus       `gorm:"size:16;not null;index" json:"status"`
	ApprovedBy      *uint               `json:"approved_by"`
	ApprovedAt      *time.Time          `json:"approved_at"`
	RejectionReason *string             `json:"rejection_reason"`

	User     *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Bank     *Bank `gorm:"foreignKey:BankID;constraint:OnDelete:RESTRICT" json:"-"`
	Approver *User `gorm:"foreignKey:ApprovedBy;constraint:OnDelete:SET NULL" json:"-"`
}

// ReceiptView is a receipt joined with its bank, owner and approver.
type ReceiptView struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	BankID          uint                `json:"bank_id"`
	ImagePath       string              `gorm:"column:receipt_image_path" json:"receipt_image_path"`
	ContentType     string              `json:"content_type"`
	ReceiptNumber   *string             `json:"receipt_number"`
	Amount          decimal.NullDecimal `json:"amount"`
	Description     *string             `json:"description"`
	UploadDate      time.Time           `json:"upload_date"`
	Status          ReceiptStatus       `json:"status"`
	ApprovedBy      *uint               `json:"approved_by"`
	ApprovedAt      *time.Time          `json:"approved_at"`
	RejectionReason *string             `json:"rejection_reason"`
	BankName        string              `json:"bank_name"`
	BankCode        *string             `json:"bank_code"`
	Username        string              `json:"username"`
	FullName        string              `json:"full_name"`
	Phone           string              `json:"phone"`
	ApprovedByName  *string             `json:"approved_by_name"`
}
