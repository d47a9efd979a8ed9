// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/export"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// Cabinet pages
const (
	CabinetRequestsURL = "/cabinet/requests"
	CabinetOrdersURL   = "/cabinet/orders"
)

// CabinetHandler serves the client cabinet. Every route is wrapped in
// RequireCabinet by the router, so a user is always present.
type CabinetHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewCabinetHandler(st *store.Store, logger *zap.Logger) *CabinetHandler {
	return &CabinetHandler{store: st, logger: logger}
}

// requestFilter reads the list filters shared by the cabinet and adminka.
// Orders only filter by date and status.
func requestFilter(r *http.Request, full bool) store.RequestFilter {
	q := r.URL.Query()
	f := store.RequestFilter{
		DateFrom: parseDate(q.Get("date_from")),
		DateTo:   parseDate(q.Get("date_to")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	if !full {
		return f
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("category")), 10, 64); err == nil && id > 0 {
		f.CategoryID = id
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	return f
}

// ownFilter restricts f to the current user's requests
func ownFilter(f store.RequestFilter, user models.User) store.RequestFilter {
	f.OwnerID = user.ID
	f.OwnerEmail = user.Email
	return f
}

func owns(user models.User, req models.Request) bool {
	return (req.UserID != nil && *req.UserID == user.ID) || (req.Email != "" && req.Email == user.Email)
}

// CabinetRequestsResponse is the request list with its grouping and filter options
type CabinetRequestsResponse struct {
	Requests       []models.Request         `json:"requests"`
	StatusSections []models.StatusSection   `json:"status_sections"`
	Categories     []models.NamedOption     `json:"categories"`
	AllCategories  []models.RequestCategory `json:"all_categories"`
}

func statusSections(requests []models.Request) []models.StatusSection {
	sections := make([]models.StatusSection, 0, len(models.RequestStatuses))
	for _, status := range models.RequestStatuses {
		section := models.StatusSection{
			Status:   status,
			Label:    models.RequestStatusLabel(status),
			Requests: []models.Request{},
		}
		for _, req := range requests {
			if req.Status == status {
				section.Requests = append(section.Requests, req)
			}
		}
		sections = append(sections, section)
	}
	return sections
}

// presentCategories lists the distinct categories of requests in first-seen order
func presentCategories(requests []models.Request) []models.NamedOption {
	seen := map[int64]bool{}
	out := []models.NamedOption{}
	for _, req := range requests {
		if req.CategoryID == nil || seen[*req.CategoryID] {
			continue
		}
		seen[*req.CategoryID] = true
		out = append(out, models.NamedOption{ID: *req.CategoryID, Name: req.CategoryName})
	}
	return out
}

// Index handles GET /cabinet
func (h *CabinetHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, CabinetRequestsURL, http.StatusFound)
}

// Requests handles GET /cabinet/requests
func (h *CabinetHandler) Requests(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	requests, err := h.store.ListRequests(r.Context(), ownFilter(requestFilter(r, true), user))
	if err != nil {
		storeError(w, h.logger, err, "requests")
		return
	}
	all, err := h.store.ListRequestCategories(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, CabinetRequestsResponse{
		Requests:       requests,
		StatusSections: statusSections(requests),
		Categories:     presentCategories(requests),
		AllCategories:  all,
	})
}

// Orders handles GET /cabinet/orders
func (h *CabinetHandler) Orders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	requests, err := h.store.ListRequests(r.Context(), ownFilter(requestFilter(r, false), user))
	if err != nil {
		storeError(w, h.logger, err, "orders")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"orders":   requests,
		"statuses": models.RequestStatuses,
	})
}

// ownedRequest loads the {id} request. Missing requests answer 404; another
// user's request redirects to fallback.
func (h *CabinetHandler) ownedRequest(w http.ResponseWriter, r *http.Request, fallback string) (models.Request, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return models.Request{}, false
	}
	req, err := h.store.GetRequest(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "request")
		return req, false
	}
	if !owns(currentUser(r), req) {
		http.Redirect(w, r, fallback, http.StatusFound)
		return req, false
	}
	return req, true
}

func (h *CabinetHandler) detail(w http.ResponseWriter, r *http.Request, fallback, stageType string) {
	req, ok := h.ownedRequest(w, r, fallback)
	if !ok {
		return
	}
	stages, err := h.store.EnsureDefaultStages(r.Context(), req.ID, stageType)
	if err != nil {
		storeError(w, h.logger, err, "stages")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RequestDetailResponse{Request: req, Stages: stages})
}

// RequestDetail handles GET /cabinet/requests/{id}
func (h *CabinetHandler) RequestDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, CabinetRequestsURL, models.StageTypeHistory)
}

// OrderDetail handles GET /cabinet/orders/{id}
func (h *CabinetHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, CabinetOrdersURL, models.StageTypeProject)
}

// UpdateRequest handles PUT /cabinet/requests/{id}
func (h *CabinetHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.ownedRequest(w, r, CabinetRequestsURL)
	if !ok {
		return
	}

	var in models.OwnerRequestUpdate
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Phone == "" || in.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name, phone and email are required")
		return
	}
	if !validEmail(in.Email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid email")
		return
	}

	if err := h.store.UpdateRequestContact(r.Context(), req.ID, in); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	updated, err := h.store.GetRequest(r.Context(), req.ID)
	if err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteRequest handles POST /cabinet/requests/{id}/delete
func (h *CabinetHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := h.store.GetRequest(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	user := currentUser(r)
	if !owns(user, req) {
		h.logger.Warn("refused foreign request delete", zap.Int64("request_id", id), zap.Int64("user_id", user.ID))
		middleware.ErrorResponse(w, http.StatusForbidden, "access denied")
		return
	}

	if err := h.store.DeleteRequest(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Success: true, Message: "Request deleted"})
}

// Support handles GET /cabinet/support
func (h *CabinetHandler) Support(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	items, err := h.store.ListContactRequests(r.Context(), store.ContactFilter{Email: user.Email})
	if err != nil {
		storeError(w, h.logger, err, "support requests")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"support_requests": items})
}

// Analytics handles GET /cabinet/analytics
func (h *CabinetHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	requests, ok := h.ownRequests(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, analytics(requests))
}

// analytics summarizes requests: history rows, counts per status, and the
// approved count of every month that has any request, oldest month first
func analytics(requests []models.Request) models.AnalyticsResponse {
	resp := models.AnalyticsResponse{
		History:  make([]models.HistoryRow, 0, len(requests)),
		ByStatus: map[string]int{},
		ByMonth:  []models.MonthCount{},
	}

	approved := map[string]int{}
	labels := map[string]string{}
	for _, req := range requests {
		resp.History = append(resp.History, models.HistoryRow{
			ID:            req.ID,
			Date:          req.CreatedAt.Format("02.01.2006"),
			Amount:        req.Amount,
			Status:        req.Status,
			StatusDisplay: models.RequestStatusLabel(req.Status),
			DisplayNumber: req.DisplayNumber(),
		})
		resp.ByStatus[req.Status]++

		month := req.CreatedAt.Format("2006-01")
		labels[month] = req.CreatedAt.Format("Jan 2006")
		if req.Status == models.RequestStatusApproved {
			approved[month]++
		}
	}

	months := make([]string, 0, len(labels))
	for m := range labels {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		resp.ByMonth = append(resp.ByMonth, models.MonthCount{Month: m, Label: labels[m], Count: approved[m]})
	}
	return resp
}

func (h *CabinetHandler) ownRequests(w http.ResponseWriter, r *http.Request) ([]models.Request, bool) {
	requests, err := h.store.ListRequests(r.Context(), ownFilter(store.RequestFilter{}, currentUser(r)))
	if err != nil {
		storeError(w, h.logger, err, "requests")
		return nil, false
	}
	return requests, true
}

func (h *CabinetHandler) download(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportPDF handles GET /cabinet/export/pdf
func (h *CabinetHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	requests, ok := h.ownRequests(w, r)
	if !ok {
		return
	}
	data, err := export.PDF(requests)
	if err != nil {
		h.logger.Error("failed to render pdf export", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	h.download(w, export.PDFContentType, export.PDFFilename, data)
}

// ExportExcel handles GET /cabinet/export/excel
func (h *CabinetHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	requests, ok := h.ownRequests(w, r)
	if !ok {
		return
	}
	data, err := export.Excel(requests)
	if err != nil {
		h.logger.Error("failed to render excel export", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	h.download(w, export.ExcelContentType, export.ExcelFilename, data)
}
