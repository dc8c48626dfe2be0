package models

import "time"

type Bank struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"column:bank_name;size:100;uniqueIndex;not null" json:"bank_name"`
	Code      *string    `gorm:"column:bank_code;size:20" json:"bank_code"`
	Status    BankStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BankUsage is a bank row with the number of live receipts that reference it.
type BankUsage struct {
	ID           uint       `json:"id"`
	Name         string     `gorm:"column:bank_name" json:"bank_name"`
	Code         *string    `gorm:"column:bank_code" json:"bank_code"`
	Status       BankStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ReceiptCount int64      `json:"receipt_count"`
}
