package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserCounts struct {
	Total    int64 `json:"total_users"`
	Pending  int64 `json:"pending_users"`
	Approved int64 `json:"approved_users"`
	Rejected int64 `json:"rejected_users"`
	Admins   int64 `json:"admin_users"`
}

type ReceiptCounts struct {
	Total         int64           `json:"total_receipts"`
	Pending       int64           `json:"pending_receipts"`
	Approved      int64           `json:"approved_receipts"`
	Rejected      int64           `json:"rejected_receipts"`
	DistinctUsers int64           `json:"users_with_receipts"`
	DistinctBanks int64           `json:"banks_used"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
}

// OwnerReceiptCounts summarises one user's receipts inside a time window.
type OwnerReceiptCounts struct {
	Total          int64           `json:"total"`
	Pending        int64           `json:"pending"`
	Approved       int64           `json:"approved"`
	Rejected       int64           `json:"rejected"`
	BanksUsed      int64           `json:"banks_used"`
	ApprovedAmount decimal.Decimal `json:"total_amount"`
	LastUpload     *time.Time      `gorm:"-" json:"last_upload"`
}

// TimeWindow is a half-open [From, To) range. A nil bound is unbounded.
type TimeWindow struct {
	From *time.Time
	To   *time.Time
}
