// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/cliparse"
	"github.com/danielhkuo/bausite/db"
	"github.com/danielhkuo/bausite/models"
)

// TestDBURL is an in-memory SQLite database private to one connection
const TestDBURL = ":memory:"

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "password123"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, db.SQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    TestDBURL,
		DatabaseType:   db.SQLite,
		JWTSecret:      "test-jwt-secret",
		TokenTTL:       time.Hour,
		MediaDriver:    "memory",
		MaxUploadBytes: 1 << 20,
		LogLevel:       "error",
		LogFormat:      "console",
	}
}

// NewTokenManager returns a token manager matching GetTestConfig
func NewTokenManager() *auth.TokenManager {
	cfg := GetTestConfig()
	return auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, auth.NewMemoryRevoker())
}

// CreateTestUser inserts an active user with a profile and returns it.
// The password is TestPassword.
func CreateTestUser(t *testing.T, conn *sql.DB, email string, staff bool) models.User {
	t.Helper()

	hash, err := auth.HashPasswordCost(TestPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		Username:    auth.UsernameBase(email),
		Email:       email,
		FirstName:   "Test",
		LastName:    "User",
		IsStaff:     staff,
		IsSuperuser: staff,
		IsActive:    true,
		DateJoined:  now,
	}
	err = conn.QueryRow(`
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_staff, is_superuser, is_active, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, user.Username, email, hash, user.FirstName, user.LastName, staff, staff, true, now).Scan(&user.ID)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO user_profiles (user_id, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, user.ID, models.UserTypeClient, now)
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return user
}

// CreateTestRequest inserts a site request and returns its ID
func CreateTestRequest(t *testing.T, conn *sql.DB, userID *int64, email, status string, createdAt time.Time) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO requests (user_id, name, phone, email, created_at, status)
		VALUES ($1, 'Test Client', '+49 30 0000', $2, $3, $4)
		RETURNING id
	`, userID, email, createdAt.UTC(), status).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test request: %v", err)
	}
	return id
}

// AuthHeader returns a bearer header for user
func AuthHeader(t *testing.T, tokens *auth.TokenManager, user models.User) map[string]string {
	t.Helper()

	token, _, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Upload describes one file part of a multipart request
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// MakeMultipartRequest creates a multipart/form-data test request
func MakeMultipartRequest(method, path string, fields map[string]string, file *Upload, headers map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+file.Field+`"; filename="`+file.Filename+`"`)
		h.Set("Content-Type", file.ContentType)
		part, _ := mw.CreatePart(h)
		_, _ = part.Write(file.Data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
