// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/cliparse"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/notify"
	"github.com/danielhkuo/bausite/store"
	"github.com/danielhkuo/bausite/testutil"
)

// fixture wires every handler over one in-memory database
type fixture struct {
	t      *testing.T
	db     *sql.DB
	cfg    cliparse.Config
	store  *store.Store
	media  *media.MemoryStore
	tokens *auth.TokenManager
	authn  *middleware.Authenticator
	logger *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	st := store.New(db, logger)
	tokens := testutil.NewTokenManager()
	return &fixture{
		t:      t,
		db:     db,
		cfg:    testutil.GetTestConfig(),
		store:  st,
		media:  media.NewMemoryStore(),
		tokens: tokens,
		authn:  middleware.NewAuthenticator(tokens, st, logger),
		logger: logger,
	}
}

func (f *fixture) site() *SiteHandler {
	return NewSiteHandler(f.store, f.media, f.logger)
}

func (f *fixture) api(n notify.Notifier) *APIHandler {
	return NewAPIHandler(f.store, n, f.logger)
}

func (f *fixture) auth() *AuthHandler {
	return NewAuthHandler(f.store, f.tokens, f.logger)
}

func (f *fixture) admin() *AdminHandler {
	return NewAdminHandler(f.store, f.media, f.logger, f.cfg.MaxUploadBytes)
}

func (f *fixture) cabinet() *CabinetHandler {
	return NewCabinetHandler(f.store, f.logger)
}

func (f *fixture) profile(editCompany bool) *ProfileHandler {
	return NewProfileHandler(f.store, f.tokens, f.media, f.logger, f.cfg.MaxUploadBytes, editCompany)
}

func (f *fixture) staff(email string) models.User {
	return testutil.CreateTestUser(f.t, f.db, email, true)
}

func (f *fixture) client(email string) models.User {
	return testutil.CreateTestUser(f.t, f.db, email, false)
}

func (f *fixture) headers(user models.User) map[string]string {
	return testutil.AuthHeader(f.t, f.tokens, user)
}

// do runs h directly with optional path values
func do(h http.HandlerFunc, req *http.Request, pathValues ...string) *httptest.ResponseRecorder {
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// asStaff runs h behind RequireStaff
func (f *fixture) asStaff(h http.HandlerFunc, req *http.Request, pathValues ...string) *httptest.ResponseRecorder {
	return do(f.authn.RequireStaff(h), req, pathValues...)
}

// asClient runs h behind RequireCabinet
func (f *fixture) asClient(h http.HandlerFunc, req *http.Request, pathValues ...string) *httptest.ResponseRecorder {
	return do(f.authn.RequireCabinet(StaffHome, h), req, pathValues...)
}

func (f *fixture) createRequestCategory(slug string) models.RequestCategory {
	f.t.Helper()
	c := models.RequestCategory{LocalizedName: models.LocalizedName{Name: slug, NameEN: slug}, Slug: slug}
	if err := f.store.CreateRequestCategory(context.Background(), &c); err != nil {
		f.t.Fatalf("Failed to create request category: %v", err)
	}
	return c
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("Failed to decode JSON response: %v (%s)", err, w.Body.String())
	}
	return m
}

// recordingNotifier remembers what it was told and can fail on demand
type recordingNotifier struct {
	requests []models.Request
	support  []models.ContactRequest
	err      error
}

func (n *recordingNotifier) RequestSubmitted(_ context.Context, r models.Request) error {
	n.requests = append(n.requests, r)
	return n.err
}

func (n *recordingNotifier) SupportSubmitted(_ context.Context, c models.ContactRequest) error {
	n.support = append(n.support, c)
	return n.err
}
