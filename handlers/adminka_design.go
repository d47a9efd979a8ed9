// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/design"
	"github.com/danielhkuo/bausite/middleware"
)

// ElementView pairs an element with its rendered declarations
type ElementView struct {
	design.ElementSettings
	CSSStyle string `json:"css_style"`
}

func viewElement(e design.ElementSettings) ElementView {
	return ElementView{ElementSettings: e, CSSStyle: e.CSSStyle()}
}

// GetDesign handles GET /adminka/design
func (h *AdminHandler) GetDesign(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetDesignSettings(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "design settings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, settings)
}

// UpdateDesign handles PUT /adminka/design. Fields absent from the body keep
// their stored values.
func (h *AdminHandler) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetDesignSettings(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "design settings")
		return
	}
	if err := middleware.ParseJSONBody(r, &settings); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := settings.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveDesignSettings(r.Context(), settings); err != nil {
		storeError(w, h.logger, err, "design settings")
		return
	}
	h.logger.Info("design settings updated", zap.Int64("admin_id", currentUser(r).ID))
	middleware.JSONResponse(w, http.StatusOK, settings)
}

// ListElements handles GET /adminka/elements
func (h *AdminHandler) ListElements(w http.ResponseWriter, r *http.Request) {
	elements, err := h.store.ListElements(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "elements")
		return
	}
	views := make([]ElementView, 0, len(elements))
	for _, e := range elements {
		views = append(views, viewElement(e))
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"elements": views})
}

// CreateElement handles POST /adminka/elements
func (h *AdminHandler) CreateElement(w http.ResponseWriter, r *http.Request) {
	e := design.ElementSettings{IsActive: true}
	if err := middleware.ParseJSONBody(r, &e); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	e.ID = 0
	e.Normalize()
	if err := e.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateElement(r.Context(), &e); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "css_selector is already used")
			return
		}
		storeError(w, h.logger, err, "element")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, viewElement(e))
}

// GetElement handles GET /adminka/elements/{id}
func (h *AdminHandler) GetElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.store.GetElement(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "element")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewElement(e))
}

// UpdateElement handles PUT /adminka/elements/{id}. The body is applied over
// the stored row; send null to clear a pixel value.
func (h *AdminHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.store.GetElement(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "element")
		return
	}
	if err := middleware.ParseJSONBody(r, &e); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	e.ID = id
	e.Normalize()
	if err := e.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateElement(r.Context(), &e); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "css_selector is already used")
			return
		}
		storeError(w, h.logger, err, "element")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewElement(e))
}

// DeleteElement handles POST /adminka/elements/{id}/delete
func (h *AdminHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteElement(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "element")
		return
	}
	deleted(w, "Element")
}
