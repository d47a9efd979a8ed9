// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/models"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "session"

type contextKey int

const (
	userKey contextKey = iota
	claimsKey
)

// UserLoader resolves the user named by a token
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
}

// Authenticator resolves the session of a request and gates handlers on it
type Authenticator struct {
	tokens *auth.TokenManager
	users  UserLoader
	logger *zap.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, users UserLoader, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// TokenFromRequest reads the bearer token, falling back to the session cookie
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// SetSessionCookie stores token in an HttpOnly cookie
func SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// errAnonymous means the request carries no usable session
var errAnonymous = errors.New("anonymous")

func (a *Authenticator) authenticate(r *http.Request) (models.User, *auth.Claims, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return models.User{}, nil, errAnonymous
	}

	claims, err := a.tokens.Parse(r.Context(), token)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevokedToken) {
		return models.User{}, nil, errAnonymous
	}
	if err != nil {
		return models.User{}, nil, err
	}

	user, err := a.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		// deleted users lose their sessions
		a.logger.Debug("session user not loadable", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return models.User{}, nil, errAnonymous
	}
	if !user.IsActive || issuedBeforePasswordChange(claims, user) {
		return models.User{}, nil, errAnonymous
	}
	return user, claims, nil
}

// issuedBeforePasswordChange compares at the second granularity of iat, so the
// token handed out by the change itself stays valid.
func issuedBeforePasswordChange(claims *auth.Claims, user models.User) bool {
	if user.PasswordChangedAt == nil || claims.IssuedAt == nil {
		return false
	}
	return claims.IssuedAt.Time.Before(user.PasswordChangedAt.Truncate(time.Second))
}

func withUser(r *http.Request, user models.User, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	ctx = context.WithValue(ctx, claimsKey, claims)
	return r.WithContext(ctx)
}

// resolve authenticates r, answering 401 or 500 itself when it returns false
func (a *Authenticator) resolve(w http.ResponseWriter, r *http.Request) (*http.Request, models.User, bool) {
	user, claims, err := a.authenticate(r)
	if errors.Is(err, errAnonymous) {
		ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return nil, user, false
	}
	if err != nil {
		a.logger.Error("failed to authenticate request", zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, "failed to authenticate")
		return nil, user, false
	}
	return withUser(r, user, claims), user, true
}

// OptionalUser attaches the user when a valid session is present
func (a *Authenticator) OptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, claims, err := a.authenticate(r)
		switch {
		case err == nil:
			r = withUser(r, user, claims)
		case !errors.Is(err, errAnonymous):
			a.logger.Warn("ignoring session", zap.Error(err))
		}
		next(w, r)
	}
}

// RequireUser rejects anonymous requests with 401
func (a *Authenticator) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, _, ok := a.resolve(w, r)
		if !ok {
			return
		}
		next(w, r)
	}
}

// RequireStaff admits staff only: 401 when anonymous, 403 otherwise
func (a *Authenticator) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, user, ok := a.resolve(w, r)
		if !ok {
			return
		}
		if !user.IsStaff {
			ErrorResponse(w, http.StatusForbidden, "staff access required")
			return
		}
		next(w, r)
	}
}

// RequireCabinet admits non-staff users and redirects staff to staffURL
func (a *Authenticator) RequireCabinet(staffURL string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, user, ok := a.resolve(w, r)
		if !ok {
			return
		}
		if user.IsStaff {
			http.Redirect(w, r, staffURL, http.StatusFound)
			return
		}
		next(w, r)
	}
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
