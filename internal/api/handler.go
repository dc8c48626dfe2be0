package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/services"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

const (
	authCookieName = "ereceipt_auth"

	loginAttemptLimit     = 5
	loginAttemptWindow    = 15 * time.Minute
	recoveryAttemptLimit  = 5
	recoveryAttemptWindow = 15 * time.Minute
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	files        storage.FileStore

	repositories     *db.Repositories
	authService      *services.AuthService
	sessionService   *services.SessionService
	directoryService *services.UserDirectoryService
	approvalService  *services.ApprovalService
	bankService      *services.BankService
	receiptService   *services.ReceiptService
	statsService     *services.StatsService

	loginLimiter    *attemptLimiter
	recoveryLimiter *attemptLimiter
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool, files storage.FileStore) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	if files == nil {
		return nil, errors.New("file store is required")
	}
	if location == nil {
		location = time.UTC
	}

	handler := &Handler{
		db:              database,
		secretKey:       []byte(secretKey),
		location:        location,
		cookieSecure:    cookieSecure,
		files:           files,
		loginLimiter:    newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		recoveryLimiter: newAttemptLimiter(recoveryAttemptLimit, recoveryAttemptWindow),
	}
	return handler.withDependencies(database), nil
}
