// Package testutils builds an in-memory application for handler tests: a
// sqlite database, a deterministic config, and a mailer that records
// instead of sending.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/mailer"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/server"
	"github.com/tradegate/backoffice/internal/storage"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.PlatformAdmin{},
		&models.PlatformRole{},
		&models.PlatformPermission{},
		&models.Merchant{},
		&models.Branch{},
		&models.MerchantUser{},
		&models.Permission{},
		&models.BranchRole{},
		&models.Buyer{},
		&models.BuyerRole{},
		&models.BuyerPermission{},
		&models.BuyerUser{},
		&models.ClientRole{},
		&models.Client{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.PasswordResetToken{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

func TestConfig() *config.Config {
	return &config.Config{
		ServerAddr:        ":0",
		AppEnv:            "test",
		AccessSecret:      "test-access-secret-0123456789abcdef0123",
		RefreshSecret:     "test-refresh-secret-0123456789abcdef012",
		AccessTTL:         15 * time.Minute,
		RefreshTTL:        7 * 24 * time.Hour,
		ResetTokenTTL:     30 * time.Minute,
		FrontendBaseURL:   "http://localhost:3000",
		DefaultClientRole: "Buyer",
	}
}

// RecordingMailer captures outgoing messages for assertions.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []mailer.Message
	Err      error
}

func (m *RecordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

func (m *RecordingMailer) Last(t *testing.T) mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		t.Fatal("no messages recorded")
	}
	return m.Messages[len(m.Messages)-1]
}

// SetupTestApp wires the full route tree over an in-memory database.
func SetupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *RecordingMailer) {
	db := TestDB(t)
	cfg := TestConfig()
	mail := &RecordingMailer{}

	files, err := storage.New(cfg)
	assert.NoError(t, err, "Failed to initialize storage")

	app := server.New(server.Deps{
		DB:    db,
		Cfg:   cfg,
		Mail:  mail,
		Files: files,
	})
	return app, db, mail
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	for k, vals := range resp.Header {
		for _, v := range vals {
			rec.Header().Add(k, v)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}
