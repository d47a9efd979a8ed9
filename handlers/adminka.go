// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// dashboardRecent is how many requests and support messages the dashboard lists
const dashboardRecent = 5

// AdminHandler serves the staff panel. Every route is wrapped in
// RequireStaff by the router.
type AdminHandler struct {
	store     *store.Store
	media     media.Store
	logger    *zap.Logger
	maxUpload int64
}

func NewAdminHandler(st *store.Store, objects media.Store, logger *zap.Logger, maxUpload int64) *AdminHandler {
	return &AdminHandler{store: st, media: objects, logger: logger, maxUpload: maxUpload}
}

func deleted(w http.ResponseWriter, what string) {
	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Success: true, Message: what + " deleted"})
}

// Dashboard handles GET /adminka
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.store.ProjectStats(ctx)
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	newSupport, err := h.store.CountContactRequests(ctx, models.ContactStatusNew)
	if err != nil {
		storeError(w, h.logger, err, "support requests")
		return
	}
	byStatus, err := h.store.CountRequestsByStatus(ctx)
	if err != nil {
		storeError(w, h.logger, err, "requests")
		return
	}
	recent, err := h.store.RecentRequests(ctx, dashboardRecent)
	if err != nil {
		storeError(w, h.logger, err, "requests")
		return
	}
	support, err := h.store.ListContactRequests(ctx, store.ContactFilter{Limit: dashboardRecent})
	if err != nil {
		storeError(w, h.logger, err, "support requests")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		TotalProjects:      stats.Total,
		CompletedProjects:  stats.Completed,
		InProgressProjects: stats.InProgress,
		NewSupport:         newSupport,
		NewApplications:    byStatus[models.RequestStatusNew],
		RecentApplications: recent,
		RecentSupport:      support,
	})
}

// Projects

// projectFromInput validates a project form; the message is "" when valid.
// err is set only when the category lookup itself failed.
func (h *AdminHandler) projectFromInput(r *http.Request, in models.ProjectInput) (p models.AdminProject, msg string, err error) {
	p = models.AdminProject{
		ProjectCode: strings.TrimSpace(in.ProjectCode),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Status:      in.Status,
		Year:        in.Year,
		Type:        strings.TrimSpace(in.Type),
		Size:        strings.TrimSpace(in.Size),
		Color:       strings.TrimSpace(in.Color),
	}
	if p.ProjectCode == "" || p.Name == "" {
		return p, "project_code and name are required", nil
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusPlanned
	}
	if !models.Contains(models.ProjectStatuses, p.Status) {
		return p, "invalid status", nil
	}
	if in.EndDate != "" {
		end, err := time.Parse(dateLayout, in.EndDate)
		if err != nil {
			return p, "end_date must be YYYY-MM-DD", nil
		}
		p.EndDate = &end
	}
	if p.CategoryID != nil {
		if _, err := h.store.GetCategory(r.Context(), *p.CategoryID); err != nil {
			if isNotFound(err) {
				return p, "unknown category", nil
			}
			return p, "", err
		}
	}
	return p, "", nil
}

// ListProjects handles GET /adminka/projects
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	stats, err := h.store.ProjectStats(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"projects": projects, "stats": stats})
}

// CreateProject handles POST /adminka/projects
func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	p, msg, err := h.projectFromInput(r, in)
	if err != nil {
		storeError(w, h.logger, err, "category")
		return
	}
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.CreateProject(r.Context(), &p); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "project_code is already used")
			return
		}
		storeError(w, h.logger, err, "project")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.ActionResponse{Success: true, Message: "Project created", ID: p.ID})
}

// GetProject handles GET /adminka/projects/{id}
func (h *AdminHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}

// UpdateProject handles PUT /adminka/projects/{id}
func (h *AdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "project")
		return
	}

	var in models.ProjectInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	p, msg, err := h.projectFromInput(r, in)
	if err != nil {
		storeError(w, h.logger, err, "category")
		return
	}
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	p.ID = id

	if err := h.store.UpdateProject(r.Context(), &p); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "project_code is already used")
			return
		}
		storeError(w, h.logger, err, "project")
		return
	}

	updated, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteProject handles POST /adminka/projects/{id}/delete
func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	deleted(w, "Project")
}

// Categories

// ListCategories handles GET /adminka/categories
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"categories": categories})
}

// CreateCategory handles POST /adminka/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	c := models.Category{
		Name:   strings.TrimSpace(in.Name),
		NameEN: strings.TrimSpace(in.NameEN),
		NameDE: strings.TrimSpace(in.NameDE),
	}
	if c.Name == "" && c.NameEN == "" && c.NameDE == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a category name is required")
		return
	}
	if err := h.store.CreateCategory(r.Context(), &c); err != nil {
		storeError(w, h.logger, err, "category")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.ActionResponse{Success: true, Message: "Category created", ID: c.ID})
}

// DeleteCategory handles POST /adminka/categories/{id}/delete
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "category")
		return
	}
	deleted(w, "Category")
}

// Support

// ListSupport handles GET /adminka/support
func (h *AdminHandler) ListSupport(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !models.Contains(models.ContactStatuses, status) {
		status = ""
	}
	items, err := h.store.ListContactRequests(r.Context(), store.ContactFilter{Status: status})
	if err != nil {
		storeError(w, h.logger, err, "support requests")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"support_requests": items,
		"status_filter":    status,
		"statuses":         models.ContactStatuses,
	})
}

// GetSupport handles GET /adminka/support/{id}
func (h *AdminHandler) GetSupport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.store.GetContactRequest(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "support request")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// UpdateSupport handles PUT /adminka/support/{id}
func (h *AdminHandler) UpdateSupport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.AdminSupportUpdate
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if in.Status == "" {
		in.Status = models.ContactStatusNew
	}
	if !models.Contains(models.ContactStatuses, in.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid status")
		return
	}

	admin := currentUser(r)
	if err := h.store.UpdateContactRequestByAdmin(r.Context(), id, in, admin.ID); err != nil {
		storeError(w, h.logger, err, "support request")
		return
	}
	h.logger.Info("support request updated",
		zap.Int64("contact_id", id), zap.String("status", in.Status), zap.Int64("admin_id", admin.ID))

	c, err := h.store.GetContactRequest(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "support request")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteSupport handles POST /adminka/support/{id}/delete
func (h *AdminHandler) DeleteSupport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteContactRequest(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "support request")
		return
	}
	deleted(w, "Support request")
}

// Requests

// AdminRequestDetail is a request with both of its stage timelines
type AdminRequestDetail struct {
	Request       models.Request        `json:"request"`
	HistoryStages []models.RequestStage `json:"history_stages"`
	ProjectStages []models.RequestStage `json:"project_stages"`
}

// ListRequests handles GET /adminka/requests
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := requestFilter(r, true)
	requests, err := h.store.ListRequests(r.Context(), filter)
	if err != nil {
		storeError(w, h.logger, err, "requests")
		return
	}
	categories, err := h.store.ListRequestCategories(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"requests":       requests,
		"all_categories": categories,
		"statuses":       models.RequestStatuses,
	})
}

// GetRequest handles GET /adminka/requests/{id}
func (h *AdminHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.requestDetail(w, r, id)
}

func (h *AdminHandler) requestDetail(w http.ResponseWriter, r *http.Request, id int64) {
	req, err := h.store.GetRequest(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	history, err := h.store.ListStages(r.Context(), id, models.StageTypeHistory)
	if err != nil {
		storeError(w, h.logger, err, "stages")
		return
	}
	project, err := h.store.ListStages(r.Context(), id, models.StageTypeProject)
	if err != nil {
		storeError(w, h.logger, err, "stages")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, AdminRequestDetail{
		Request:       req,
		HistoryStages: history,
		ProjectStages: project,
	})
}

// UpdateRequest handles PUT /adminka/requests/{id}
func (h *AdminHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.AdminRequestUpdate
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if in.Status == "" {
		in.Status = models.RequestStatusNew
	}
	if !models.Contains(models.RequestStatuses, in.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid status")
		return
	}
	if in.Amount != nil && *in.Amount < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	admin := currentUser(r)
	if err := h.store.UpdateRequestByAdmin(r.Context(), id, in, admin.ID); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	h.logger.Info("request updated",
		zap.Int64("request_id", id), zap.String("status", in.Status), zap.Int64("admin_id", admin.ID))
	h.requestDetail(w, r, id)
}

// DeleteRequest handles POST /adminka/requests/{id}/delete
func (h *AdminHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteRequest(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}
	deleted(w, "Request")
}

// CreateStage handles POST /adminka/requests/{id}/stages
func (h *AdminHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetRequest(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "request")
		return
	}

	var in models.StageInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	st := models.RequestStage{
		RequestID:   id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Order:       in.Order,
		StageType:   in.StageType,
	}
	if st.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if st.StageType == "" {
		st.StageType = models.StageTypeHistory
	}
	if st.StageType != models.StageTypeHistory && st.StageType != models.StageTypeProject {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid stage_type")
		return
	}

	if err := h.store.CreateStage(r.Context(), &st); err != nil {
		storeError(w, h.logger, err, "stage")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, st)
}

// DeleteStage handles POST /adminka/stages/{id}/delete
func (h *AdminHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteStage(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "stage")
		return
	}
	deleted(w, "Stage")
}
