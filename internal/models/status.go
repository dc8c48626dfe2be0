package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

func ParseUserStatus(raw string) (UserStatus, bool) {
	status := UserStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status UserStatus) Valid() bool {
	switch status {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	default:
		return false
	}
}

func (status UserStatus) Value() (driver.Value, error) {
	return string(status), nil
}

func (status *UserStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	*status = UserStatus(raw)
	return nil
}

type ReceiptStatus string

const (
	ReceiptStatusPending  ReceiptStatus = "pending"
	ReceiptStatusApproved ReceiptStatus = "approved"
	ReceiptStatusRejected ReceiptStatus = "rejected"
	// ReceiptStatusDeleted marks a receipt removed by its owner. The row is kept.
	ReceiptStatusDeleted ReceiptStatus = "deleted"
)

func ParseReceiptStatus(raw string) (ReceiptStatus, bool) {
	status := ReceiptStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status ReceiptStatus) Valid() bool {
	switch status {
	case ReceiptStatusPending, ReceiptStatusApproved, ReceiptStatusRejected, ReceiptStatusDeleted:
		return true
	default:
		return false
	}
}

func (status ReceiptStatus) Value() (driver.Value, error) {
	return string(status), nil
}

func (status *ReceiptStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	*status = ReceiptStatus(raw)
	return nil
}

type BankStatus string

const (
	BankStatusActive   BankStatus = "active"
	BankStatusInactive BankStatus = "inactive"
)

func ParseBankStatus(raw string) (BankStatus, bool) {
	status := BankStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status BankStatus) Valid() bool {
	return status == BankStatusActive || status == BankStatusInactive
}

func (status BankStatus) Value() (driver.Value, error) {
	return string(status), nil
}

func (status *BankStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	*status = BankStatus(raw)
	return nil
}

// StatusFilter selects list rows by approval state. The zero value and any
// unknown input resolve to StatusFilterAll.
type StatusFilter string

const (
	StatusFilterAll      StatusFilter = "all"
	StatusFilterPending  StatusFilter = "pending"
	StatusFilterApproved StatusFilter = "approved"
	StatusFilterRejected StatusFilter = "rejected"
)

func ParseStatusFilter(raw string) StatusFilter {
	switch filter := StatusFilter(strings.ToLower(strings.TrimSpace(raw))); filter {
	case StatusFilterPending, StatusFilterApproved, StatusFilterRejected:
		return filter
	default:
		return StatusFilterAll
	}
}

func (filter StatusFilter) IsAll() bool {
	return filter != StatusFilterPending && filter != StatusFilterApproved && filter != StatusFilterRejected
}

func scanString(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	default:
		return "", fmt.Errorf("unsupported status value %T", value)
	}
}
