// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/notify"
	"github.com/danielhkuo/bausite/store"
)

// extraPrefix marks cascade answers in a submitted request
const extraPrefix = "extra_"

// legacyDefaultLimit is the page size of the legacy listings
const legacyDefaultLimit = 100

// APIHandler serves the public JSON endpoints used by the site forms
type APIHandler struct {
	store    *store.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAPIHandler(st *store.Store, notifier notify.Notifier, logger *zap.Logger) *APIHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &APIHandler{store: st, notifier: notifier, logger: logger}
}

// RequestCategories handles GET /api/request-categories
func (h *APIHandler) RequestCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListRequestCategories(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}

	l := lang(r)
	out := make([]models.NamedOption, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.NamedOption{ID: c.ID, Name: c.In(l), Slug: c.Slug})
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"categories": out})
}

// RequestSubcategories handles GET /api/request-subcategories?category_id=
func (h *APIHandler) RequestSubcategories(w http.ResponseWriter, r *http.Request) {
	out := []models.NamedOption{}
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err == nil {
		subs, err := h.store.ListSubcategories(r.Context(), categoryID)
		if err != nil {
			storeError(w, h.logger, err, "subcategories")
			return
		}
		l := lang(r)
		for _, s := range subs {
			out = append(out, models.NamedOption{ID: s.ID, Name: s.In(l), Slug: s.Slug})
		}
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"subcategories": out})
}

// RequestQuestions handles GET /api/request-questions?subcategory_id=
func (h *APIHandler) RequestQuestions(w http.ResponseWriter, r *http.Request) {
	out := []models.QuestionOption{}
	subcategoryID, err := strconv.ParseInt(r.URL.Query().Get("subcategory_id"), 10, 64)
	if err == nil {
		questions, err := h.store.ListQuestions(r.Context(), subcategoryID)
		if err != nil {
			storeError(w, h.logger, err, "questions")
			return
		}
		l := lang(r)
		for _, q := range questions {
			out = append(out, models.QuestionOption{ID: q.ID, Text: q.In(l), FieldName: q.FieldName})
		}
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"questions": out})
}

// submission flattens a JSON object or a form body into string values
type submission map[string]string

func readSubmission(r *http.Request) (submission, error) {
	out := submission{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := middleware.ParseJSONBody(r, &raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			switch v := v.(type) {
			case nil:
			case string:
				out[k] = strings.TrimSpace(v)
			case float64:
				out[k] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				out[k] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return out, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		return nil, err
	}
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = strings.TrimSpace(vs[0])
		}
	}
	return out, nil
}

// id reads an optional positive id; "" is absent, anything else malformed
func (s submission) id(key string) (*int64, bool) {
	v := s[key]
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, false
	}
	return &n, true
}

// SubmitRequest handles POST /api/submit-request
func (h *APIHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	form, err := readSubmission(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate input
	req := models.Request{
		Name:         form["name"],
		Phone:        form["phone"],
		Email:        form["email"],
		Message:      form["message"],
		ExtraAnswers: map[string]string{},
	}
	if req.Name == "" || req.Phone == "" || req.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name, phone and email are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid email")
		return
	}

	categoryID, ok := form.id("category")
	if !ok || categoryID == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category is required")
		return
	}
	if _, err := h.store.GetRequestCategory(r.Context(), *categoryID); err != nil {
		if isNotFound(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown category")
			return
		}
		storeError(w, h.logger, err, "category")
		return
	}
	req.CategoryID = categoryID

	subcategoryID, ok := form.id("subcategory")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid subcategory")
		return
	}
	if subcategoryID != nil {
		sub, err := h.store.GetSubcategory(r.Context(), *subcategoryID)
		if err != nil && !isNotFound(err) {
			storeError(w, h.logger, err, "subcategory")
			return
		}
		if err != nil || sub.CategoryID != *categoryID {
			middleware.ErrorResponse(w, http.StatusBadRequest, "subcategory does not belong to category")
			return
		}
		req.SubcategoryID = subcategoryID
	}

	for k, v := range form {
		if field, ok := strings.CutPrefix(k, extraPrefix); ok && field != "" && v != "" {
			req.ExtraAnswers[field] = v
		}
	}

	if user, ok := middleware.UserFromContext(r.Context()); ok {
		req.UserID = &user.ID
	}

	if err := h.store.CreateRequest(r.Context(), &req); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}

	if err := h.notifier.RequestSubmitted(r.Context(), req); err != nil {
		h.logger.Warn("request notification failed", zap.Int64("request_id", req.ID), zap.Error(err))
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ActionResponse{
		Success: true,
		Message: "Request submitted",
		ID:      req.ID,
	})
}

// SubmitSupport handles POST /api/submit-support and the legacy
// POST /api/contact/requests
func (h *APIHandler) SubmitSupport(w http.ResponseWriter, r *http.Request) {
	form, err := readSubmission(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := models.ContactRequest{
		Name:    form["name"],
		Phone:   form["phone"],
		Email:   form["email"],
		Reason:  form["reason"],
		Message: form["message"],
	}
	if c.Name == "" || c.Phone == "" || c.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name, phone and email are required")
		return
	}
	if !strings.Contains(c.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid email")
		return
	}
	if c.Reason == "" {
		c.Reason = models.ReasonSupport
	}
	if !models.Contains(models.ContactReasons, c.Reason) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid reason")
		return
	}

	if err := h.store.CreateContactRequest(r.Context(), &c); err != nil {
		storeError(w, h.logger, err, "support request")
		return
	}

	if err := h.notifier.SupportSubmitted(r.Context(), c); err != nil {
		h.logger.Warn("support notification failed", zap.Int64("contact_id", c.ID), zap.Error(err))
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ActionResponse{
		Success: true,
		Message: "Support request submitted",
		ID:      c.ID,
	})
}

// window applies ?skip and ?limit to a listing
func window[T any](r *http.Request, items []T) []T {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", legacyDefaultLimit)
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// PublicProjects handles GET /api/public/projects
func (h *APIHandler) PublicProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, window(r, projects))
}

// PublicCategories handles GET /api/public/categories
func (h *APIHandler) PublicCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, window(r, categories))
}
