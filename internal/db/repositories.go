package db

import "gorm.io/gorm"

type Repositories struct {
	Users    *UserRepository
	Banks    *BankRepository
	Receipts *ReceiptRepository
	Sessions *SessionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(database),
		Banks:    NewBankRepository(database),
		Receipts: NewReceiptRepository(database),
		Sessions: NewSessionRepository(database),
	}
}
