// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/design"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// HomeResponse is everything the public homepage renders
type HomeResponse struct {
	Site       models.SiteSettings                  `json:"site_settings"`
	HeroImages []models.HeroImage                   `json:"hero_carousel_images"`
	Services   []models.Service                     `json:"services"`
	Projects   models.Page[models.PortfolioProject] `json:"projects"`
	Design     design.DesignSettings                `json:"design_settings"`
	CSS        string                               `json:"css"`
}

type SiteHandler struct {
	store  *store.Store
	media  media.Store
	logger *zap.Logger
}

func NewSiteHandler(st *store.Store, objects media.Store, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{store: st, media: objects, logger: logger}
}

// Home handles GET /
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	site, err := h.store.GetSiteSettings(ctx)
	if err != nil {
		storeError(w, h.logger, err, "site settings")
		return
	}
	hero, err := h.store.ListHeroImages(ctx)
	if err != nil {
		storeError(w, h.logger, err, "hero images")
		return
	}
	services, err := h.store.ListServices(ctx)
	if err != nil {
		storeError(w, h.logger, err, "services")
		return
	}

	// Non-numeric pages fall back to the first one
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}
	projects, err := h.store.PortfolioPage(ctx, page)
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	projects.Items = withPortfolioURLs(projects.Items)

	settings, css, err := h.stylesheet(r)
	if err != nil {
		storeError(w, h.logger, err, "design settings")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, HomeResponse{
		Site:       withLogoURL(site),
		HeroImages: withHeroURLs(hero),
		Services:   withServiceURLs(services),
		Projects:   projects,
		Design:     settings,
		CSS:        css,
	})
}

// Stylesheet handles GET /site.css
func (h *SiteHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	_, css, err := h.stylesheet(r)
	if err != nil {
		storeError(w, h.logger, err, "design settings")
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

func (h *SiteHandler) stylesheet(r *http.Request) (design.DesignSettings, string, error) {
	settings, err := h.store.GetDesignSettings(r.Context())
	if err != nil {
		return settings, "", err
	}
	elements, err := h.store.ListElements(r.Context())
	if err != nil {
		return settings, "", err
	}
	return settings, design.Stylesheet(settings, elements), nil
}

// Image handles GET /dbimg/{model}/{id}
func (h *SiteHandler) Image(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if !media.ValidModel(model) {
		middleware.ErrorResponse(w, http.StatusNotFound, "image not found")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	obj, err := h.media.Get(r.Context(), media.Key(model, id))
	if errors.Is(err, media.ErrNotFound) || (err == nil && len(obj.Data) == 0) {
		middleware.ErrorResponse(w, http.StatusNotFound, "image not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load image", zap.String("model", model), zap.Int64("id", id), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load image")
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = media.DefaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
