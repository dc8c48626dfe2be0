package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/security"
	"github.com/terraincognita07/ereceipt/internal/storage"
	"gorm.io/gorm"
)

const (
	testSecretKey    = "test-secret-key-with-enough-length-0123456789"
	testPassword     = "password123"
	testSecretAnswer = "Blue"
)

var pngFixture = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithCookieSecure(t, false)
}

func newTestAppWithCookieSecure(t *testing.T, cookieSecure bool) (*fiber.App, *gorm.DB) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ereceipt-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	files, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("init local store: %v", err)
	}

	handler, err := NewHandler(database, testSecretKey, time.UTC, cookieSecure, files)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(recover.New())
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, database
}

func seedUser(t *testing.T, database *gorm.DB, username string, status models.UserStatus, isAdmin bool) models.User {
	t.Helper()

	passwordHash, err := security.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	answerHash, err := security.HashSecretAnswer(testSecretAnswer)
	if err != nil {
		t.Fatalf("hash secret answer: %v", err)
	}

	user := models.User{
		Username:         username,
		FullName:         "Test " + username,
		Phone:            "+12025550100",
		PasswordHash:     passwordHash,
		SecretQuestion:   "Favourite colour?",
		SecretAnswerHash: answerHash,
		IsAdmin:          isAdmin,
		Status:           status,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func seedBank(t *testing.T, database *gorm.DB, name string, status models.BankStatus) models.Bank {
	t.Helper()

	bank := models.Bank{Name: name, Status: status}
	if err := database.Create(&bank).Error; err != nil {
		t.Fatalf("create bank %s: %v", name, err)
	}
	return bank
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, payload any, authCookie string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func readEnvelope(t *testing.T, response *http.Response) envelope {
	t.Helper()
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	var payload envelope
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode envelope %q: %v", string(raw), err)
	}
	return payload
}

func decodeData(t *testing.T, payload envelope, target any) {
	t.Helper()
	if err := json.Unmarshal(payload.Data, target); err != nil {
		t.Fatalf("decode data %q: %v", string(payload.Data), err)
	}
}

func expectStatus(t *testing.T, response *http.Response, expected int) envelope {
	t.Helper()

	payload := readEnvelope(t, response)
	if response.StatusCode != expected {
		t.Fatalf("expected status %d, got %d (%s)", expected, response.StatusCode, payload.Message)
	}
	return payload
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, username string, password string) string {
	t.Helper()

	response := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"username": username,
		"password": password,
	}, "")
	cookie := responseCookie(response.Cookies(), authCookieName)
	expectStatus(t, response, fiber.StatusOK)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected auth cookie in login response")
	}
	return authCookieName + "=" + cookie.Value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func uploadReceipt(t *testing.T, app *fiber.App, authCookie string, bankID string, content []byte, fields map[string]string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if bankID != "" {
		if err := writer.WriteField("bank_id", bankID); err != nil {
			t.Fatalf("write bank_id: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}
	if content != nil {
		part, err := writer.CreateFormFile(receiptFileField, "receipt.bin")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/receipts", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Cookie", authCookie)

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("upload receipt failed: %v", err)
	}
	return response
}

func idPath(format string, id uint) string {
	return strings.Replace(format, ":id", strconv.FormatUint(uint64(id), 10), 1)
}
