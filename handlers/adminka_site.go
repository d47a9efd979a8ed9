// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// imageField is the multipart field carrying row images
const imageField = "image"

// attachImage stores up for a content row and records its metadata
func (h *AdminHandler) attachImage(ctx context.Context, up *upload, model, table string, id int64) error {
	if up == nil {
		return nil
	}
	if err := up.save(ctx, h.media, model, id); err != nil {
		return err
	}
	return h.store.SetImage(ctx, table, id, up.contentType, up.filename)
}

// dropImage removes the stored bytes of a deleted row
func (h *AdminHandler) dropImage(ctx context.Context, model string, id int64) {
	if err := h.media.Delete(ctx, media.Key(model, id)); err != nil {
		h.logger.Warn("failed to delete image", zap.String("model", model), zap.Int64("id", id), zap.Error(err))
	}
}

func (h *AdminHandler) imageError(w http.ResponseWriter, err error, model string, id int64) {
	h.logger.Error("failed to store image", zap.String("model", model), zap.Int64("id", id), zap.Error(err))
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
}

// UpdateLogo handles PUT /adminka/site/logo
func (h *AdminHandler) UpdateLogo(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, "logo", h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	if up == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "logo file is required")
		return
	}

	if err := up.save(r.Context(), h.media, media.ModelSiteSettings, 1); err != nil {
		h.imageError(w, err, media.ModelSiteSettings, 1)
		return
	}
	if err := h.store.SetLogo(r.Context(), up.contentType, up.filename); err != nil {
		storeError(w, h.logger, err, "site settings")
		return
	}

	site, err := h.store.GetSiteSettings(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "site settings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, withLogoURL(site))
}

// Hero carousel

// ListHero handles GET /adminka/site/hero
func (h *AdminHandler) ListHero(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListHeroImages(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "hero images")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"hero_images": withHeroURLs(items),
		"max":         store.MaxHeroImages,
	})
}

// CreateHero handles POST /adminka/site/hero
func (h *AdminHandler) CreateHero(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, imageField, h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}

	hero := models.HeroImage{
		Order: formInt(r, "order"),
		Alt:   strings.TrimSpace(r.FormValue("alt")),
	}
	if err := h.store.CreateHeroImage(r.Context(), &hero); err != nil {
		storeError(w, h.logger, err, "hero image")
		return
	}
	if err := h.attachImage(r.Context(), up, media.ModelHeroImage, store.ImageTableHero, hero.ID); err != nil {
		h.imageError(w, err, media.ModelHeroImage, hero.ID)
		return
	}

	saved, err := h.store.GetHeroImage(r.Context(), hero.ID)
	if err != nil {
		storeError(w, h.logger, err, "hero image")
		return
	}
	saved.ImageURL = imageURL(media.ModelHeroImage, saved.ID, saved.ImageType)
	middleware.JSONResponse(w, http.StatusCreated, saved)
}

// DeleteHero handles POST /adminka/site/hero/{id}/delete
func (h *AdminHandler) DeleteHero(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteHeroImage(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "hero image")
		return
	}
	h.dropImage(r.Context(), media.ModelHeroImage, id)
	deleted(w, "Hero image")
}

// Services

// ListServices handles GET /adminka/site/services
func (h *AdminHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListServices(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "services")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"services": withServiceURLs(items)})
}

func serviceFromForm(r *http.Request) (models.Service, string) {
	sv := models.Service{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Order:       formInt(r, "order"),
	}
	if sv.Title == "" || sv.Description == "" {
		return sv, "title and description are required"
	}
	return sv, ""
}

func (h *AdminHandler) respondService(w http.ResponseWriter, r *http.Request, status int, id int64) {
	sv, err := h.store.GetService(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "service")
		return
	}
	sv.ImageURL = imageURL(media.ModelService, sv.ID, sv.ImageType)
	middleware.JSONResponse(w, status, sv)
}

// CreateService handles POST /adminka/site/services
func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, imageField, h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	sv, msg := serviceFromForm(r)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.CreateService(r.Context(), &sv); err != nil {
		storeError(w, h.logger, err, "service")
		return
	}
	if err := h.attachImage(r.Context(), up, media.ModelService, store.ImageTableService, sv.ID); err != nil {
		h.imageError(w, err, media.ModelService, sv.ID)
		return
	}
	h.respondService(w, r, http.StatusCreated, sv.ID)
}

// UpdateService handles PUT /adminka/site/services/{id}
func (h *AdminHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	up, err := readUpload(r, imageField, h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	sv, msg := serviceFromForm(r)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	sv.ID = id

	if err := h.store.UpdateService(r.Context(), sv); err != nil {
		storeError(w, h.logger, err, "service")
		return
	}
	if err := h.attachImage(r.Context(), up, media.ModelService, store.ImageTableService, id); err != nil {
		h.imageError(w, err, media.ModelService, id)
		return
	}
	h.respondService(w, r, http.StatusOK, id)
}

// DeleteService handles POST /adminka/site/services/{id}/delete
func (h *AdminHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteService(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "service")
		return
	}
	h.dropImage(r.Context(), media.ModelService, id)
	deleted(w, "Service")
}

// Portfolio

// ListPortfolio handles GET /adminka/site/projects
func (h *AdminHandler) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPortfolio(r.Context())
	if err != nil {
		storeError(w, h.logger, err, "projects")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"projects": withPortfolioURLs(items)})
}

func portfolioFromForm(r *http.Request) (models.PortfolioProject, string) {
	p := models.PortfolioProject{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Link:        strings.TrimSpace(r.FormValue("link")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Order:       formInt(r, "order"),
	}
	if p.Title == "" {
		return p, "title is required"
	}
	return p, ""
}

func (h *AdminHandler) respondPortfolio(w http.ResponseWriter, r *http.Request, status int, id int64) {
	p, err := h.store.GetPortfolioProject(r.Context(), id)
	if err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	p.ImageURL = imageURL(media.ModelProject, p.ID, p.ImageType)
	middleware.JSONResponse(w, status, p)
}

// CreatePortfolio handles POST /adminka/site/projects
func (h *AdminHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, imageField, h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	p, msg := portfolioFromForm(r)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.CreatePortfolioProject(r.Context(), &p); err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	if err := h.attachImage(r.Context(), up, media.ModelProject, store.ImageTablePortfolio, p.ID); err != nil {
		h.imageError(w, err, media.ModelProject, p.ID)
		return
	}
	h.respondPortfolio(w, r, http.StatusCreated, p.ID)
}

// UpdatePortfolio handles PUT /adminka/site/projects/{id}
func (h *AdminHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	up, err := readUpload(r, imageField, h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	p, msg := portfolioFromForm(r)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	p.ID = id

	if err := h.store.UpdatePortfolioProject(r.Context(), p); err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	if err := h.attachImage(r.Context(), up, media.ModelProject, store.ImageTablePortfolio, id); err != nil {
		h.imageError(w, err, media.ModelProject, id)
		return
	}
	h.respondPortfolio(w, r, http.StatusOK, id)
}

// DeletePortfolio handles POST /adminka/site/projects/{id}/delete
func (h *AdminHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeletePortfolioProject(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "project")
		return
	}
	h.dropImage(r.Context(), media.ModelProject, id)
	deleted(w, "Project")
}
