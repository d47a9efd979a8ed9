// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	is_staff, is_superuser, is_active, date_joined, last_login, password_changed_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var lastLogin, passwordChanged sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.DateJoined, &lastLogin, &passwordChanged)
	u.LastLogin = timePtr(lastLogin)
	u.PasswordChangedAt = timePtr(passwordChanged)
	return u, err
}

func insertUser(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, u *models.User) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name,
			is_staff, is_superuser, is_active, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsStaff, u.IsSuperuser, u.IsActive, u.DateJoined).Scan(&u.ID)
}

// CreateUser inserts a user and fills in its ID
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.DateJoined = s.now()
	if err := insertUser(ctx, s.db, u); err != nil {
		return wrap("create user", err)
	}
	s.logger.Info("user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return nil
}

// CreateUserWithProfile inserts a user and its profile in one transaction
func (s *Store) CreateUserWithProfile(ctx context.Context, u *models.User, p *models.UserProfile) error {
	now := s.now()
	u.DateJoined = now
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return wrap("create user", err)
		}
		p.UserID = u.ID
		p.CreatedAt, p.UpdatedAt = now, now
		err := tx.QueryRowContext(ctx, `
			INSERT INTO user_profiles (user_id, user_type, company_name, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, p.UserID, p.UserType, p.CompanyName, p.Phone, now, now).Scan(&p.ID)
		return wrap("create profile", err)
	})
	if err != nil {
		return err
	}
	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("user_type", p.UserType))
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, wrap("get user", err)
}

// GetUserByEmail matches case-insensitively; the oldest account wins.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) ORDER BY id LIMIT 1`, email))
	return u, wrap("get user by email", err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, wrap("get user by username", err)
}

// EmailTaken reports whether another user already uses the email
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2`, email, exceptID).Scan(&n)
	if err != nil {
		return false, wrap("check email", err)
	}
	return n > 0, nil
}

// UniqueUsername derives a free username from an email address
func (s *Store) UniqueUsername(ctx context.Context, email string) (string, error) {
	base := auth.UsernameBase(email)
	for n := 0; n < 10000; n++ {
		candidate := auth.UsernameCandidate(base, n)
		_, err := s.GetUserByUsername(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free username for %q", base)
}

// UpdateUser saves names and email
func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, email = $3 WHERE id = $4
	`, u.FirstName, u.LastName, u.Email, u.ID)
	return affected("update user", res, err)
}

// SetPassword stores a new hash and stamps the change, which ends older sessions.
func (s *Store) SetPassword(ctx context.Context, userID int64, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, password_changed_at = $2 WHERE id = $3`, hash, s.now(), userID)
	return affected("set password", res, err)
}

func (s *Store) TouchLastLogin(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, s.now(), userID)
	return affected("touch last login", res, err)
}

func (s *Store) HasSuperuser(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_superuser = $1`, true).Scan(&n); err != nil {
		return false, wrap("count superusers", err)
	}
	return n > 0, nil
}

const profileColumns = `id, user_id, user_type, company_name, phone, avatar_type, avatar_name, created_at, updated_at`

func scanProfile(row scanner) (models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.UserType, &p.CompanyName, &p.Phone,
		&p.AvatarType, &p.AvatarName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetOrCreateProfile loads the profile, creating an empty client profile if missing
func (s *Store) GetOrCreateProfile(ctx context.Context, userID int64) (models.UserProfile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return p, wrap("get profile", err)
	}

	now := s.now()
	p = models.UserProfile{UserID: userID, UserType: models.UserTypeClient, CreatedAt: now, UpdatedAt: now}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user_profiles (user_id, user_type, company_name, phone, created_at, updated_at)
		VALUES ($1, $2, '', '', $3, $4)
		RETURNING id
	`, userID, p.UserType, now, now).Scan(&p.ID)
	if err != nil {
		return p, wrap("create profile", err)
	}
	return p, nil
}

// UpdateProfile saves type, company and phone
func (s *Store) UpdateProfile(ctx context.Context, p models.UserProfile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_profiles SET user_type = $1, company_name = $2, phone = $3, updated_at = $4
		WHERE user_id = $5
	`, p.UserType, p.CompanyName, p.Phone, s.now(), p.UserID)
	return affected("update profile", res, err)
}

func (s *Store) SetAvatar(ctx context.Context, userID int64, contentType, name string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_profiles SET avatar_type = $1, avatar_name = $2, updated_at = $3 WHERE user_id = $4
	`, contentType, name, s.now(), userID)
	return affected("set avatar", res, err)
}
