// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
	"github.com/danielhkuo/bausite/testutil"
)

type testServer struct {
	db      *sql.DB
	tokens  *auth.TokenManager
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := testutil.NewTokenManager()
	h := NewRouter(Deps{
		Store:  store.New(db, zap.NewNop()),
		Media:  media.NewMemoryStore(),
		Tokens: tokens,
		Logger: zap.NewNop(),
		Config: testutil.GetTestConfig(),
	})
	return &testServer{db: db, tokens: tokens, handler: h}
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) as(t *testing.T, user *models.User, method, path string) *httptest.ResponseRecorder {
	var headers map[string]string
	if user != nil {
		headers = testutil.AuthHeader(t, s.tokens, *user)
	}
	return s.serve(testutil.MakeRequest(method, path, nil, headers))
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		return ""
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.serve(httptest.NewRequest("GET", "/health", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.serve(httptest.NewRequest("GET", "/health", nil))
	s.serve(httptest.NewRequest("GET", "/nowhere", nil))

	w := s.serve(httptest.NewRequest("GET", "/metrics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{code="200",method="GET",route="GET /health"} 1`)
	assert.Contains(t, body, `http_requests_total{code="404",method="GET",route="/"} 1`)
	assert.Contains(t, body, "http_request_duration_seconds_bucket")
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/nowhere", "/adminka/nowhere", "/api/public/nothing"} {
		w := s.serve(httptest.NewRequest("GET", path, nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
		assert.Equal(t, pageNotFound, errorOf(t, w), path)
		assert.Contains(t, w.Body.String(), `"success":false`)
	}
}

func TestHomepage(t *testing.T) {
	s := newTestServer(t)

	w := s.serve(httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRoutesExist(t *testing.T) {
	s := newTestServer(t)
	staff := testutil.CreateTestUser(t, s.db, "staff@example.com", true)
	client := testutil.CreateTestUser(t, s.db, "client@example.com", false)

	routes := []struct {
		method string
		path   string
		user   *models.User
	}{
		{"GET", "/", nil},
		{"GET", "/site.css", nil},
		{"GET", "/dbimg/project/1", nil},

		{"GET", "/api/request-categories", nil},
		{"GET", "/api/request-subcategories", nil},
		{"GET", "/api/request-questions", nil},
		{"POST", "/api/submit-request", nil},
		{"POST", "/api/submit-support", nil},
		{"GET", "/api/public/projects", nil},
		{"GET", "/api/public/categories", nil},
		{"POST", "/api/contact/requests", nil},

		{"POST", "/auth/login", nil},
		{"POST", "/auth/register", nil},
		{"GET", "/auth/me", &client},

		{"GET", "/adminka", &staff},
		{"GET", "/adminka/projects", &staff},
		{"POST", "/adminka/projects", &staff},
		{"GET", "/adminka/projects/1", &staff},
		{"PUT", "/adminka/projects/1", &staff},
		{"POST", "/adminka/projects/1/delete", &staff},
		{"GET", "/adminka/categories", &staff},
		{"POST", "/adminka/categories", &staff},
		{"POST", "/adminka/categories/1/delete", &staff},
		{"GET", "/adminka/support", &staff},
		{"GET", "/adminka/support/1", &staff},
		{"PUT", "/adminka/support/1", &staff},
		{"POST", "/adminka/support/1/delete", &staff},
		{"GET", "/adminka/requests", &staff},
		{"GET", "/adminka/requests/1", &staff},
		{"PUT", "/adminka/requests/1", &staff},
		{"POST", "/adminka/requests/1/delete", &staff},
		{"POST", "/adminka/requests/1/stages", &staff},
		{"POST", "/adminka/stages/1/delete", &staff},
		{"GET", "/adminka/request-categories", &staff},
		{"POST", "/adminka/request-categories", &staff},
		{"POST", "/adminka/request-categories/1/delete", &staff},
		{"POST", "/adminka/request-subcategories", &staff},
		{"POST", "/adminka/request-subcategories/1/delete", &staff},
		{"POST", "/adminka/request-questions", &staff},
		{"POST", "/adminka/request-questions/1/delete", &staff},
		{"PUT", "/adminka/site/logo", &staff},
		{"GET", "/adminka/site/hero", &staff},
		{"POST", "/adminka/site/hero", &staff},
		{"POST", "/adminka/site/hero/1/delete", &staff},
		{"GET", "/adminka/site/services", &staff},
		{"POST", "/adminka/site/services", &staff},
		{"PUT", "/adminka/site/services/1", &staff},
		{"POST", "/adminka/site/services/1/delete", &staff},
		{"GET", "/adminka/site/projects", &staff},
		{"POST", "/adminka/site/projects", &staff},
		{"PUT", "/adminka/site/projects/1", &staff},
		{"POST", "/adminka/site/projects/1/delete", &staff},
		{"GET", "/adminka/design", &staff},
		{"PUT", "/adminka/design", &staff},
		{"GET", "/adminka/elements", &staff},
		{"POST", "/adminka/elements", &staff},
		{"GET", "/adminka/elements/1", &staff},
		{"PUT", "/adminka/elements/1", &staff},
		{"POST", "/adminka/elements/1/delete", &staff},
		{"GET", "/adminka/profile", &staff},
		{"PUT", "/adminka/profile", &staff},
		{"POST", "/adminka/profile/password", &staff},
		{"POST", "/adminka/profile/avatar", &staff},

		{"GET", "/cabinet", &client},
		{"GET", "/cabinet/requests", &client},
		{"GET", "/cabinet/requests/1", &client},
		{"PUT", "/cabinet/requests/1", &client},
		{"POST", "/cabinet/requests/1/delete", &client},
		{"GET", "/cabinet/orders", &client},
		{"GET", "/cabinet/orders/1", &client},
		{"GET", "/cabinet/support", &client},
		{"GET", "/cabinet/analytics", &client},
		{"GET", "/cabinet/export/pdf", &client},
		{"GET", "/cabinet/export/excel", &client},
		{"GET", "/cabinet/profile", &client},
		{"PUT", "/cabinet/profile", &client},
		{"POST", "/cabinet/profile/password", &client},
		{"POST", "/cabinet/profile/avatar", &client},

		{"POST", "/auth/logout", &client},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := s.as(t, route.user, route.method, route.path)
			assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code)
			assert.NotEqual(t, http.StatusInternalServerError, w.Code, w.Body.String())
			assert.NotEqual(t, pageNotFound, errorOf(t, w))
		})
	}
}

func TestWrongMethodFallsThrough(t *testing.T) {
	s := newTestServer(t)

	w := s.serve(httptest.NewRequest("DELETE", "/health", nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, pageNotFound, errorOf(t, w))
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	staff := testutil.CreateTestUser(t, s.db, "staff@example.com", true)
	client := testutil.CreateTestUser(t, s.db, "client@example.com", false)

	testutil.AssertStatus(t, s.as(t, nil, "GET", "/adminka"), http.StatusUnauthorized)
	testutil.AssertStatus(t, s.as(t, &client, "GET", "/adminka"), http.StatusForbidden)
	testutil.AssertStatus(t, s.as(t, &staff, "GET", "/adminka"), http.StatusOK)
	testutil.AssertStatus(t, s.as(t, nil, "GET", "/cabinet/requests"), http.StatusUnauthorized)
	testutil.AssertStatus(t, s.as(t, nil, "GET", "/auth/me"), http.StatusUnauthorized)
}

func TestCabinetRedirectsStaff(t *testing.T) {
	s := newTestServer(t)
	staff := testutil.CreateTestUser(t, s.db, "staff@example.com", true)

	tests := []struct {
		path string
		want string
	}{
		{"/cabinet/requests", "/adminka"},
		{"/cabinet/analytics", "/adminka"},
		{"/cabinet/profile", "/adminka/profile"},
		{"/cabinet/support", "/adminka/support"},
	}
	for _, tt := range tests {
		w := s.as(t, &staff, "GET", tt.path)
		testutil.AssertStatus(t, w, http.StatusFound)
		assert.Equal(t, tt.want, w.Header().Get("Location"), tt.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/submit-request", nil)
	req.Header.Set("Origin", "https://bau.example.com")
	w := s.serve(req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "https://bau.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubmitThroughRouter(t *testing.T) {
	s := newTestServer(t)

	form := "name=Anna&phone=%2B43+1+234&email=anna%40example.com&message=Roof"
	req := httptest.NewRequest("POST", "/api/submit-support", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := s.serve(req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	staff := testutil.CreateTestUser(t, s.db, "staff@example.com", true)
	w = s.as(t, &staff, "GET", "/adminka/support")
	testutil.AssertStatus(t, w, http.StatusOK)
	require.Contains(t, w.Body.String(), "anna@example.com")
}
