package services

import (
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
)

type StatsUserRepository interface {
	Counts() (models.UserCounts, error)
}

type StatsReceiptRepository interface {
	Counts() (models.ReceiptCounts, error)
}

type Statistics struct {
	Users       models.UserCounts    `json:"users"`
	Receipts    models.ReceiptCounts `json:"receipts"`
	GeneratedAt time.Time            `json:"generated_at"`
}

type StatsService struct {
	users    StatsUserRepository
	receipts StatsReceiptRepository
	now      func() time.Time
}

func NewStatsService(users StatsUserRepository, receipts StatsReceiptRepository) *StatsService {
	return &StatsService{users: users, receipts: receipts, now: time.Now}
}

func (service *StatsService) Compute(actor *Identity) (Statistics, error) {
	if err := Authorize(actor, RoleAdmin); err != nil {
		return Statistics{}, err
	}
	users, err := service.users.Counts()
	if err != nil {
		return Statistics{}, err
	}
	receipts, err := service.receipts.Counts()
	if err != nil {
		return Statistics{}, err
	}
	receipts.TotalAmount = receipts.TotalAmount.Round(2)
	receipts.AverageAmount = receipts.AverageAmount.Round(2)

	return Statistics{
		Users:       users,
		Receipts:    receipts,
		GeneratedAt: service.now().UTC(),
	}, nil
}
