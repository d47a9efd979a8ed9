// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// Landing pages after login
const (
	StaffHome  = "/adminka"
	ClientHome = "/cabinet/requests"
)

type AuthHandler struct {
	store  *store.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthHandler(st *store.Store, tokens *auth.TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens, logger: logger}
}

func homeFor(user models.User) string {
	if user.IsStaff {
		return StaffHome
	}
	return ClientHome
}

// startSession issues a token, sets the cookie and answers with the login envelope
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, _, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	middleware.SetSessionCookie(w, r, token, h.tokens.TTL())
	middleware.JSONResponse(w, status, models.LoginResponse{
		Success:  true,
		Token:    token,
		Redirect: homeFor(user),
		User:     user,
	})
}

// splitName breaks a full name at the first whitespace
func splitName(full string) (first, last string) {
	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i:])
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	login := strings.TrimSpace(req.Email)
	if login == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// The login field takes an email; anything that is not a known email
	// is tried as a username.
	user, err := h.store.GetUserByEmail(r.Context(), login)
	if isNotFound(err) {
		user, err = h.store.GetUserByUsername(r.Context(), login)
	}
	if isNotFound(err) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		storeError(w, h.logger, err, "user")
		return
	}

	if auth.CheckPassword(user.PasswordHash, req.Password) != nil || !user.IsActive {
		h.logger.Info("login rejected", zap.Int64("user_id", user.ID))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := h.store.TouchLastLogin(r.Context(), user.ID); err != nil {
		h.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	h.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.Bool("staff", user.IsStaff))
	h.startSession(w, r, http.StatusOK, user)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if req.UserType == "" {
		req.UserType = models.UserTypeClient
	}
	if !models.Contains(models.UserTypes, req.UserType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid user_type")
		return
	}
	company := strings.TrimSpace(req.CompanyName)
	if req.UserType == models.UserTypeCompany && company == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "company_name is required for companies")
		return
	}
	if err := auth.ValidateNewPassword(req.Password1, req.Password2); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	taken, err := h.store.EmailTaken(r.Context(), email, 0)
	if err != nil {
		storeError(w, h.logger, err, "user")
		return
	}
	if taken {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a user with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password1)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}
	username, err := h.store.UniqueUsername(r.Context(), email)
	if err != nil {
		storeError(w, h.logger, err, "user")
		return
	}

	first, last := splitName(fullName)
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
	}
	profile := models.UserProfile{
		UserType:    req.UserType,
		CompanyName: company,
		Phone:       strings.TrimSpace(req.Phone),
	}
	if err := h.store.CreateUserWithProfile(r.Context(), &user, &profile); err != nil {
		storeError(w, h.logger, err, "user")
		return
	}

	h.startSession(w, r, http.StatusCreated, user)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		if err := h.tokens.Revoke(r.Context(), claims); err != nil {
			h.logger.Error("failed to revoke token", zap.Int64("user_id", claims.UserID), zap.Error(err))
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
			return
		}
	}
	middleware.ClearSessionCookie(w)
	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Success: true, Message: "Logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	profile, err := h.store.GetOrCreateProfile(r.Context(), user.ID)
	if err != nil {
		storeError(w, h.logger, err, "profile")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ProfileResponse{User: user, Profile: withAvatarURL(profile)})
}
