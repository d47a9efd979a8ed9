// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

// Bootstrap superuser for a fresh deployment
const (
	SuperuserName     = "root"
	SuperuserEmail    = "root@localhost"
	SuperuserPassword = "root"
)

// CreateSuperuser creates root/root unless some superuser already exists.
// It reports whether a user was created.
func CreateSuperuser(ctx context.Context, st *store.Store, logger *zap.Logger) (bool, error) {
	exists, err := st.HasSuperuser(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Info("superuser already exists, skipping")
		return false, nil
	}

	taken, err := usernameTaken(ctx, st, SuperuserName)
	if err != nil {
		return false, err
	}
	if taken {
		logger.Warn("username already taken, skipping", zap.String("username", SuperuserName))
		return false, nil
	}

	return true, createStaff(ctx, st, logger, models.User{
		Username:    SuperuserName,
		Email:       SuperuserEmail,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	}, SuperuserPassword)
}

// CreateAdmin creates a staff account unless the email or username is taken.
func CreateAdmin(ctx context.Context, st *store.Store, logger *zap.Logger, email, username, password string) (bool, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return false, errors.New("email, username and password are required")
	}

	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		logger.Info("user already exists, skipping", zap.String("email", email))
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	taken, err := usernameTaken(ctx, st, username)
	if err != nil {
		return false, err
	}
	if taken {
		logger.Warn("username already taken, skipping", zap.String("username", username))
		return false, nil
	}

	return true, createStaff(ctx, st, logger, models.User{
		Username: username,
		Email:    email,
		IsStaff:  true,
		IsActive: true,
	}, password)
}

func usernameTaken(ctx context.Context, st *store.Store, username string) (bool, error) {
	_, err := st.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	}
	return false, err
}

func createStaff(ctx context.Context, st *store.Store, logger *zap.Logger, u models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := st.CreateUser(ctx, &u); err != nil {
		return err
	}
	logger.Info("staff user created", zap.String("username", u.Username), zap.Bool("superuser", u.IsSuperuser))
	return nil
}
