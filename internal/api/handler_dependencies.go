package api

import (
	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	repos := handler.repositories

	handler.authService = services.NewAuthService(repos.Users)
	handler.sessionService = services.NewSessionService(repos.Sessions, repos.Users, handler.secretKey)
	handler.directoryService = services.NewUserDirectoryService(repos.Users, handler.files)
	handler.approvalService = services.NewApprovalService(repos.Users, repos.Receipts)
	handler.bankService = services.NewBankService(repos.Banks)
	handler.receiptService = services.NewReceiptService(repos.Receipts, repos.Banks, handler.files, handler.location)
	handler.statsService = services.NewStatsService(repos.Users, repos.Receipts)
	return handler
}

// ensureDependencies fills services that a partially constructed handler is
// missing. Tests build handlers field by field.
func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	repos := handler.repositories

	if handler.authService == nil {
		handler.authService = services.NewAuthService(repos.Users)
	}
	if handler.sessionService == nil {
		handler.sessionService = services.NewSessionService(repos.Sessions, repos.Users, handler.secretKey)
	}
	if handler.directoryService == nil {
		handler.directoryService = services.NewUserDirectoryService(repos.Users, handler.files)
	}
	if handler.approvalService == nil {
		handler.approvalService = services.NewApprovalService(repos.Users, repos.Receipts)
	}
	if handler.bankService == nil {
		handler.bankService = services.NewBankService(repos.Banks)
	}
	if handler.receiptService == nil {
		handler.receiptService = services.NewReceiptService(repos.Receipts, repos.Banks, handler.files, handler.location)
	}
	if handler.statsService == nil {
		handler.statsService = services.NewStatsService(repos.Users, repos.Receipts)
	}
	if handler.loginLimiter == nil {
		handler.loginLimiter = newAttemptLimiter(loginAttemptLimit, loginAttemptWindow)
	}
	if handler.recoveryLimiter == nil {
		handler.recoveryLimiter = newAttemptLimiter(recoveryAttemptLimit, recoveryAttemptWindow)
	}
}
