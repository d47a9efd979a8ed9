// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/bausite/models"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrRevokedToken    = errors.New("token revoked")
	ErrInvalidPassword = errors.New("invalid password")
	ErrPasswordTooWeak = fmt.Errorf("password must be at least %d characters", models.MinPasswordLength)
)

// MaxUsernameLength mirrors the username column limit of the original user table.
const MaxUsernameLength = 30

// HashPassword hashes a password with the default bcrypt cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost hashes with an explicit cost (tests use bcrypt.MinCost)
func HashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a candidate password
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateNewPassword checks length and confirmation of a new password
func ValidateNewPassword(p1, p2 string) error {
	if len([]rune(p1)) < models.MinPasswordLength {
		return ErrPasswordTooWeak
	}
	if p1 != p2 {
		return errors.New("passwords do not match")
	}
	return nil
}

// UsernameBase derives a username from an email: lowercase, @ and . become _,
// truncated to MaxUsernameLength.
func UsernameBase(email string) string {
	base := strings.ToLower(strings.TrimSpace(email))
	base = strings.NewReplacer("@", "_", ".", "_").Replace(base)
	if len(base) > MaxUsernameLength {
		base = base[:MaxUsernameLength]
	}
	if base == "" {
		base = "user"
	}
	return base
}

// UsernameCandidate returns base for n == 0, otherwise base with a numeric
// suffix, shortening base so the result still fits.
func UsernameCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	suffix := strconv.Itoa(n)
	if len(base)+len(suffix) > MaxUsernameLength {
		base = base[:MaxUsernameLength-len(suffix)]
	}
	return base + suffix
}

// Claims carried in a session token
type Claims struct {
	UserID  int64  `json:"uid"`
	Email   string `json:"email"`
	IsStaff bool   `json:"staff"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, revoker Revoker) *TokenManager {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

// Issue signs a new token for the user
func (m *TokenManager) Issue(user models.User) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, claims, nil
}

// Parse validates signature, expiry and revocation
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke invalidates the token until it would have expired anyway
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	until := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return m.revoker.Revoke(ctx, claims.ID, until)
}

// TTL is the lifetime of issued tokens
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
