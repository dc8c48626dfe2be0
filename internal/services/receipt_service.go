package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

const historyDateLayout = "2006-01-02"

type ReceiptRepository interface {
	Create(receipt *models.Receipt) error
	FindByID(receiptID uint) (models.Receipt, error)
	ListByOwner(userID uint, window models.TimeWindow) ([]models.ReceiptView, error)
	List(filter models.StatusFilter) ([]models.ReceiptView, error)
	SoftDelete(receiptID uint, userID uint) (bool, error)
	OwnerCounts(userID uint, window models.TimeWindow) (models.OwnerReceiptCounts, error)
}

type ReceiptBankLookup interface {
	FindByID(bankID uint) (models.Bank, error)
}

type ReceiptUpload struct {
	BankID        uint
	ReceiptNumber *string
	Amount        *string
	Description   *string
	Size          int64
	Content       io.ReadSeeker
}

type HistoryQuery struct {
	TodayOnly bool
	DateFrom  string
	DateTo    string
}

type ReceiptHistory struct {
	Receipts  []models.ReceiptView
	Stats     models.OwnerReceiptCounts
	TodayOnly bool
	Window    models.TimeWindow
}

type ReceiptService struct {
	receipts ReceiptRepository
	banks    ReceiptBankLookup
	files    storage.FileStore
	location *time.Location
	now      func() time.Time
}

func NewReceiptService(receipts ReceiptRepository, banks ReceiptBankLookup, files storage.FileStore, location *time.Location) *ReceiptService {
	if location == nil {
		location = time.UTC
	}
	return &ReceiptService{
		receipts: receipts,
		banks:    banks,
		files:    files,
		location: location,
		now:      time.Now,
	}
}

// Upload validates everything first, stores the file, then inserts the row.
// A failed insert removes the stored file again.
func (service *ReceiptService) Upload(ctx context.Context, actor *Identity, upload ReceiptUpload) (models.Receipt, error) {
	if err := Authorize(actor, RoleUser); err != nil {
		return models.Receipt{}, err
	}
	if upload.BankID == 0 {
		return models.Receipt{}, invalidInput("Bank selection is required")
	}
	if upload.Content == nil {
		return models.Receipt{}, invalidInput("Receipt image is required")
	}
	if err := ValidateReceiptFileSize(upload.Size); err != nil {
		return models.Receipt{}, err
	}

	receiptNumber := optionalText(upload.ReceiptNumber)
	description := optionalText(upload.Description)
	if err := validateReceiptText(receiptNumber, description); err != nil {
		return models.Receipt{}, err
	}
	amount, err := ParseReceiptAmount(upload.Amount)
	if err != nil {
		return models.Receipt{}, err
	}
	contentType, extension, err := DetectReceiptType(upload.Content)
	if err != nil {
		return models.Receipt{}, err
	}

	bank, err := service.banks.FindByID(upload.BankID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Receipt{}, ErrBankUnavailable
	}
	if err != nil {
		return models.Receipt{}, err
	}
	if bank.Status != models.BankStatusActive {
		return models.Receipt{}, ErrBankUnavailable
	}

	key := fmt.Sprintf("receipts/%d/%s%s", actor.UserID, uuid.NewString(), extension)
	if err := service.files.Save(ctx, key, upload.Content, upload.Size, contentType); err != nil {
		return models.Receipt{}, fmt.Errorf("store receipt file: %w", err)
	}

	receipt := models.Receipt{
		UserID:        actor.UserID,
		BankID:        bank.ID,
		ImagePath:     key,
		ContentType:   contentType,
		ReceiptNumber: receiptNumber,
		Amount:        amount,
		Description:   description,
		UploadDate:    service.now().UTC(),
		Status:        models.ReceiptStatusPending,
	}
	if err := service.receipts.Create(&receipt); err != nil {
		if removeErr := service.files.Remove(ctx, key); removeErr != nil {
			log.Errorf("remove orphaned receipt file %s: %v", key, removeErr)
		}
		return models.Receipt{}, err
	}
	return receipt, nil
}

func (service *ReceiptService) History(actor *Identity, query HistoryQuery) (ReceiptHistory, error) {
	if err := Authorize(actor, RoleUser); err != nil {
		return ReceiptHistory{}, err
	}
	window, err := service.historyWindow(query)
	if err != nil {
		return ReceiptHistory{}, err
	}

	receipts, err := service.receipts.ListByOwner(actor.UserID, window)
	if err != nil {
		return ReceiptHistory{}, err
	}
	stats, err := service.receipts.OwnerCounts(actor.UserID, window)
	if err != nil {
		return ReceiptHistory{}, err
	}
	stats.ApprovedAmount = stats.ApprovedAmount.Round(2)

	return ReceiptHistory{
		Receipts:  receipts,
		Stats:     stats,
		TodayOnly: query.TodayOnly,
		Window:    window,
	}, nil
}

// historyWindow turns calendar dates in the configured zone into a UTC
// half-open window. today wins over explicit dates.
func (service *ReceiptService) historyWindow(query HistoryQuery) (models.TimeWindow, error) {
	if query.TodayOnly {
		start := startOfDay(service.now().In(service.location))
		end := start.AddDate(0, 0, 1)
		return models.TimeWindow{From: utcPointer(start), To: utcPointer(end)}, nil
	}

	var window models.TimeWindow
	if raw := strings.TrimSpace(query.DateFrom); raw != "" {
		from, err := time.ParseInLocation(historyDateLayout, raw, service.location)
		if err != nil {
			return models.TimeWindow{}, invalidInput("date_from must use YYYY-MM-DD")
		}
		window.From = utcPointer(from)
	}
	if raw := strings.TrimSpace(query.DateTo); raw != "" {
		to, err := time.ParseInLocation(historyDateLayout, raw, service.location)
		if err != nil {
			return models.TimeWindow{}, invalidInput("date_to must use YYYY-MM-DD")
		}
		window.To = utcPointer(to.AddDate(0, 0, 1))
	}
	if window.From != nil && window.To != nil && !window.From.Before(*window.To) {
		return models.TimeWindow{}, invalidInput("date_from must not be after date_to")
	}
	return window, nil
}

// OpenFile returns the receipt and a reader for its stored file. Receipts of
// other users look missing unless the actor is an admin.
func (service *ReceiptService) OpenFile(ctx context.Context, actor *Identity, receiptID uint) (models.Receipt, io.ReadCloser, error) {
	if err := Authorize(actor, RoleUser); err != nil {
		return models.Receipt{}, nil, err
	}
	receipt, err := service.receipts.FindByID(receiptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Receipt{}, nil, ErrReceiptNotFound
	}
	if err != nil {
		return models.Receipt{}, nil, err
	}
	if receipt.Status == models.ReceiptStatusDeleted {
		return models.Receipt{}, nil, ErrReceiptNotFound
	}
	if receipt.UserID != actor.UserID && !actor.IsAdmin {
		return models.Receipt{}, nil, ErrReceiptNotFound
	}

	reader, err := service.files.Open(ctx, receipt.ImagePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return models.Receipt{}, nil, ErrReceiptNotFound
	}
	if err != nil {
		return models.Receipt{}, nil, err
	}
	return receipt, reader, nil
}

func (service *ReceiptService) Delete(actor *Identity, receiptID uint) error {
	if err := Authorize(actor, RoleUser); err != nil {
		return err
	}
	deleted, err := service.receipts.SoftDelete(receiptID, actor.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReceiptNotFound
	}
	return nil
}

func (service *ReceiptService) ListAll(actor *Identity, filter models.StatusFilter) ([]models.ReceiptView, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return nil, err
	}
	return service.receipts.List(filter)
}

func startOfDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}

func utcPointer(value time.Time) *time.Time {
	utc := value.UTC()
	return &utc
}
