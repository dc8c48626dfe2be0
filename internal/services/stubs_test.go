package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/security"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

var pngFixture = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type stubUserRepo struct {
	users        map[uint]models.User
	nextID       uint
	createErr    error
	revoked      []uint
	receiptPaths map[uint][]string
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[uint]models.User{}, receiptPaths: map[uint][]string{}}
	for _, user := range users {
		repo.users[user.ID] = user
		if user.ID > repo.nextID {
			repo.nextID = user.ID
		}
	}
	return repo
}

func (stub *stubUserRepo) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepo) FindByUsername(username string) (models.User, error) {
	for _, user := range stub.users {
		if strings.EqualFold(user.Username, strings.TrimSpace(username)) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *stubUserRepo) ExistsByUsername(username string) (bool, error) {
	_, err := stub.FindByUsername(username)
	return err == nil, nil
}

func (stub *stubUserRepo) Create(user *models.User) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	stub.nextID++
	user.ID = stub.nextID
	stub.users[user.ID] = *user
	return nil
}

func (stub *stubUserRepo) UpdateByID(userID uint, updates map[string]any) error {
	user, ok := stub.users[userID]
	if !ok {
		return nil
	}
	for column, value := range updates {
		switch column {
		case "full_name":
			user.FullName = value.(string)
		case "phone":
			user.Phone = value.(string)
		case "is_admin":
			user.IsAdmin = value.(bool)
		case "status":
			user.Status = value.(models.UserStatus)
		case "approved_at":
			approvedAt := value.(time.Time)
			user.ApprovedAt = &approvedAt
		}
	}
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) UpdatePasswordAndRevokeSessions(userID uint, passwordHash string) error {
	user := stub.users[userID]
	user.PasswordHash = passwordHash
	stub.users[userID] = user
	stub.revoked = append(stub.revoked, userID)
	return nil
}

func (stub *stubUserRepo) TransitionStatus(userID uint, status models.UserStatus, actorID uint, at time.Time) (int64, error) {
	user, ok := stub.users[userID]
	if !ok || user.Status != models.UserStatusPending {
		return 0, nil
	}
	user.Status = status
	user.ApprovedBy = &actorID
	user.ApprovedAt = &at
	stub.users[userID] = user
	return 1, nil
}

func (stub *stubUserRepo) List(filter models.StatusFilter) ([]models.UserView, error) {
	views := make([]models.UserView, 0, len(stub.users))
	for _, user := range stub.users {
		if !filter.IsAll() && string(user.Status) != string(filter) {
			continue
		}
		views = append(views, models.UserView{ID: user.ID, Username: user.Username, Status: user.Status})
	}
	return views, nil
}

func (stub *stubUserRepo) DeleteWithReceipts(userID uint) ([]string, error) {
	if _, ok := stub.users[userID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(stub.users, userID)
	return stub.receiptPaths[userID], nil
}

type stubBankRepo struct {
	banks  map[uint]models.Bank
	nextID uint
	inUse  map[uint]bool
}

func newStubBankRepo(banks ...models.Bank) *stubBankRepo {
	repo := &stubBankRepo{banks: map[uint]models.Bank{}, inUse: map[uint]bool{}}
	for _, bank := range banks {
		repo.banks[bank.ID] = bank
		if bank.ID > repo.nextID {
			repo.nextID = bank.ID
		}
	}
	return repo
}

func (stub *stubBankRepo) ListActive() ([]models.Bank, error) {
	banks := make([]models.Bank, 0)
	for _, bank := range stub.banks {
		if bank.Status == models.BankStatusActive {
			banks = append(banks, bank)
		}
	}
	return banks, nil
}

func (stub *stubBankRepo) ListWithUsage() ([]models.BankUsage, error) {
	usage := make([]models.BankUsage, 0, len(stub.banks))
	for _, bank := range stub.banks {
		usage = append(usage, models.BankUsage{ID: bank.ID, Name: bank.Name, Status: bank.Status})
	}
	return usage, nil
}

func (stub *stubBankRepo) FindByID(bankID uint) (models.Bank, error) {
	bank, ok := stub.banks[bankID]
	if !ok {
		return models.Bank{}, gorm.ErrRecordNotFound
	}
	return bank, nil
}

func (stub *stubBankRepo) NameTaken(name string, excludeID uint) (bool, error) {
	for _, bank := range stub.banks {
		if bank.ID != excludeID && strings.EqualFold(bank.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubBankRepo) Create(bank *models.Bank) error {
	stub.nextID++
	bank.ID = stub.nextID
	stub.banks[bank.ID] = *bank
	return nil
}

func (stub *stubBankRepo) UpdateByID(bankID uint, updates map[string]any) error {
	bank := stub.banks[bankID]
	for column, value := range updates {
		switch column {
		case "bank_name":
			bank.Name = value.(string)
		case "bank_code":
			bank.Code = value.(*string)
		case "status":
			bank.Status = value.(models.BankStatus)
		}
	}
	stub.banks[bankID] = bank
	return nil
}

func (stub *stubBankRepo) DeactivateIfUnused(bankID uint, _ time.Time) (bool, error) {
	bank, ok := stub.banks[bankID]
	if !ok || stub.inUse[bankID] {
		return false, nil
	}
	bank.Status = models.BankStatusInactive
	stub.banks[bankID] = bank
	return true, nil
}

type stubReceiptRepo struct {
	receipts   map[uint]models.Receipt
	nextID     uint
	createErr  error
	lastWindow models.TimeWindow
	ownerStats models.OwnerReceiptCounts
	counts     models.ReceiptCounts
}

func newStubReceiptRepo(receipts ...models.Receipt) *stubReceiptRepo {
	repo := &stubReceiptRepo{receipts: map[uint]models.Receipt{}}
	for _, receipt := range receipts {
		repo.receipts[receipt.ID] = receipt
		if receipt.ID > repo.nextID {
			repo.nextID = receipt.ID
		}
	}
	return repo
}

func (stub *stubReceiptRepo) Create(receipt *models.Receipt) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	stub.nextID++
	receipt.ID = stub.nextID
	stub.receipts[receipt.ID] = *receipt
	return nil
}

func (stub *stubReceiptRepo) FindByID(receiptID uint) (models.Receipt, error) {
	receipt, ok := stub.receipts[receiptID]
	if !ok {
		return models.Receipt{}, gorm.ErrRecordNotFound
	}
	return receipt, nil
}

func (stub *stubReceiptRepo) ListByOwner(userID uint, window models.TimeWindow) ([]models.ReceiptView, error) {
	stub.lastWindow = window
	views := make([]models.ReceiptView, 0)
	for _, receipt := range stub.receipts {
		if receipt.UserID == userID && receipt.Status != models.ReceiptStatusDeleted {
			views = append(views, models.ReceiptView{ID: receipt.ID, UserID: receipt.UserID, Status: receipt.Status})
		}
	}
	return views, nil
}

func (stub *stubReceiptRepo) List(filter models.StatusFilter) ([]models.ReceiptView, error) {
	views := make([]models.ReceiptView, 0)
	for _, receipt := range stub.receipts {
		if receipt.Status == models.ReceiptStatusDeleted {
			continue
		}
		if !filter.IsAll() && string(receipt.Status) != string(filter) {
			continue
		}
		views = append(views, models.ReceiptView{ID: receipt.ID, Status: receipt.Status})
	}
	return views, nil
}

func (stub *stubReceiptRepo) SoftDelete(receiptID uint, userID uint) (bool, error) {
	receipt, ok := stub.receipts[receiptID]
	if !ok || receipt.UserID != userID || receipt.Status == models.ReceiptStatusDeleted {
		return false, nil
	}
	receipt.Status = models.ReceiptStatusDeleted
	stub.receipts[receiptID] = receipt
	return true, nil
}

func (stub *stubReceiptRepo) OwnerCounts(uint, models.TimeWindow) (models.OwnerReceiptCounts, error) {
	return stub.ownerStats, nil
}

func (stub *stubReceiptRepo) Counts() (models.ReceiptCounts, error) {
	return stub.counts, nil
}

func (stub *stubReceiptRepo) TransitionStatus(receiptID uint, status models.ReceiptStatus, actorID uint, at time.Time, reason *string) (int64, error) {
	receipt, ok := stub.receipts[receiptID]
	if !ok || receipt.Status != models.ReceiptStatusPending {
		return 0, nil
	}
	receipt.Status = status
	receipt.ApprovedBy = &actorID
	receipt.ApprovedAt = &at
	receipt.RejectionReason = reason
	stub.receipts[receiptID] = receipt
	return 1, nil
}

type stubSessionRepo struct {
	sessions map[string]models.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: map[string]models.Session{}}
}

func (stub *stubSessionRepo) Create(session *models.Session) error {
	stub.sessions[session.ID] = *session
	return nil
}

func (stub *stubSessionRepo) FindByID(sessionID string) (models.Session, error) {
	session, ok := stub.sessions[sessionID]
	if !ok {
		return models.Session{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (stub *stubSessionRepo) DeleteByID(sessionID string) error {
	delete(stub.sessions, sessionID)
	return nil
}

func (stub *stubSessionRepo) DeleteExpired(now time.Time) (int64, error) {
	var removed int64
	for id, session := range stub.sessions {
		if session.Expired(now) {
			delete(stub.sessions, id)
			removed++
		}
	}
	return removed, nil
}

type memoryFileStore struct {
	objects map[string][]byte
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{objects: map[string][]byte{}}
}

func (store *memoryFileStore) Save(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	store.objects[key] = content
	return nil
}

func (store *memoryFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := store.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (store *memoryFileStore) Remove(_ context.Context, key string) error {
	delete(store.objects, key)
	return nil
}

func mustHashForTest(value string) string {
	hash, err := security.HashPassword(value)
	if err != nil {
		panic(err)
	}
	return hash
}

func adminIdentity() *Identity {
	return &Identity{UserID: 1, Username: "admin", IsAdmin: true}
}

func userIdentity(userID uint) *Identity {
	return &Identity{UserID: userID, Username: "user"}
}
