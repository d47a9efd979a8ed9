// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// ProfileHandler serves the own-account pages of both the adminka and the
// cabinet. Only staff may edit their company name.
type ProfileHandler struct {
	store       *store.Store
	tokens      *auth.TokenManager
	media       media.Store
	logger      *zap.Logger
	maxUpload   int64
	editCompany bool
}

func NewProfileHandler(st *store.Store, tokens *auth.TokenManager, objects media.Store, logger *zap.Logger, maxUpload int64, editCompany bool) *ProfileHandler {
	return &ProfileHandler{
		store:       st,
		tokens:      tokens,
		media:       objects,
		logger:      logger,
		maxUpload:   maxUpload,
		editCompany: editCompany,
	}
}

func (h *ProfileHandler) respond(w http.ResponseWriter, r *http.Request, user models.User) {
	profile, err := h.store.GetOrCreateProfile(r.Context(), user.ID)
	if err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ProfileResponse{User: user, Profile: withAvatarURL(profile)})
}

// Get handles GET /adminka/profile and GET /cabinet/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, currentUser(r))
}

// Update handles PUT /adminka/profile and PUT /cabinet/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user := currentUser(r)
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)

	// An email without @ is ignored rather than rejected
	if email := strings.TrimSpace(req.Email); strings.Contains(email, "@") {
		taken, err := h.store.EmailTaken(r.Context(), email, user.ID)
		if err != nil {
			storeError(w, h.logger, err, "user")
			return
		}
		if taken {
			middleware.ErrorResponse(w, http.StatusBadRequest, "a user with this email already exists")
			return
		}
		user.Email = email
	}

	profile, err := h.store.GetOrCreateProfile(r.Context(), user.ID)
	if err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}
	profile.Phone = strings.TrimSpace(req.Phone)
	if h.editCompany {
		profile.CompanyName = strings.TrimSpace(req.CompanyName)
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		storeError(w, h.logger, err, "user")
		return
	}
	if err := h.store.UpdateProfile(r.Context(), profile); err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}

	h.logger.Info("profile updated", zap.Int64("user_id", user.ID))
	h.respond(w, r, user)
}

// ChangePassword handles POST /adminka/profile/password and
// POST /cabinet/profile/password. The current token is revoked and a fresh
// one returned.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChangeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user := currentUser(r)
	if err := auth.CheckPassword(user.PasswordHash, req.OldPassword); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "old password is incorrect")
		return
	}
	if err := auth.ValidateNewPassword(req.NewPassword1, req.NewPassword2); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.NewPassword1)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if err := h.store.SetPassword(r.Context(), user.ID, hash); err != nil {
		storeError(w, h.logger, err, "user")
		return
	}

	if err := h.tokens.Revoke(r.Context(), middleware.ClaimsFromContext(r.Context())); err != nil {
		h.logger.Warn("failed to revoke old token", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	token, _, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	middleware.SetSessionCookie(w, r, token, h.tokens.TTL())

	h.logger.Info("password changed", zap.Int64("user_id", user.ID))
	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{
		Success: true,
		Message: "Password changed",
		Token:   token,
	})
}

// UploadAvatar handles POST /adminka/profile/avatar and POST /cabinet/profile/avatar
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, "avatar", h.maxUpload)
	if err != nil {
		uploadError(w, err)
		return
	}
	if up == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "avatar file is required")
		return
	}

	user := currentUser(r)
	profile, err := h.store.GetOrCreateProfile(r.Context(), user.ID)
	if err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}
	if err := up.save(r.Context(), h.media, media.ModelUserProfile, profile.ID); err != nil {
		h.logger.Error("failed to store avatar", zap.Int64("user_id", user.ID), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store avatar")
		return
	}
	if err := h.store.SetAvatar(r.Context(), user.ID, up.contentType, up.filename); err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}

	h.respond(w, r, user)
}
