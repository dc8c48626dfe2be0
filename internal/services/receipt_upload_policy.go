package services

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
)

const (
	MaxReceiptFileSize         = 10 << 20
	MaxReceiptNumberLength     = 100
	MaxReceiptDescriptionRunes = 1000
)

var maxReceiptAmount = decimal.New(1, 10)

// allowedReceiptTypes maps sniffed content types to stored file extensions.
var allowedReceiptTypes = []struct {
	contentType string
	extension   string
}{
	{contentType: "image/jpeg", extension: ".jpg"},
	{contentType: "image/png", extension: ".png"},
	{contentType: "image/gif", extension: ".gif"},
	{contentType: "application/pdf", extension: ".pdf"},
}

var errUnsupportedReceiptType = invalidInput("Only JPG, PNG, GIF images and PDF files are allowed")

// DetectReceiptType sniffs the content of an upload and rewinds it. The
// client-supplied name and content type are never trusted.
func DetectReceiptType(content io.ReadSeeker) (string, string, error) {
	detected, err := mimetype.DetectReader(content)
	if err != nil {
		return "", "", fmt.Errorf("sniff upload: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind upload: %w", err)
	}

	for _, allowed := range allowedReceiptTypes {
		if detected.Is(allowed.contentType) {
			return allowed.contentType, allowed.extension, nil
		}
	}
	return "", "", errUnsupportedReceiptType
}

func ValidateReceiptFileSize(size int64) error {
	if size <= 0 {
		return invalidInput("Receipt image is required")
	}
	if size > MaxReceiptFileSize {
		return invalidInput("File size must not exceed 10MB")
	}
	return nil
}

// ParseReceiptAmount accepts an optional non-negative amount with at most two
// decimal places.
func ParseReceiptAmount(raw *string) (decimal.NullDecimal, error) {
	text := optionalText(raw)
	if text == nil {
		return decimal.NullDecimal{}, nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(*text, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, invalidInput("amount must be a number")
	}
	if amount.IsNegative() {
		return decimal.NullDecimal{}, invalidInput("amount must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.NullDecimal{}, invalidInput("amount must have at most two decimal places")
	}
	if amount.GreaterThanOrEqual(maxReceiptAmount) {
		return decimal.NullDecimal{}, invalidInput("amount is too large")
	}
	return decimal.NewNullDecimal(amount), nil
}

func validateReceiptText(receiptNumber *string, description *string) error {
	if receiptNumber != nil && utf8.RuneCountInString(*receiptNumber) > MaxReceiptNumberLength {
		return invalidInput("receipt_number must be at most %d characters", MaxReceiptNumberLength)
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxReceiptDescriptionRunes {
		return invalidInput("description must be at most %d characters", MaxReceiptDescriptionRunes)
	}
	return nil
}
