// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps images in the media_objects table of the main database
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Put replaces any existing object under the key
func (s *SQLStore) Put(ctx context.Context, obj Object) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM media_objects WHERE key = $1`, obj.Key); err != nil {
		return fmt.Errorf("failed to replace media object: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO media_objects (key, content_type, data, size, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, obj.Key, obj.ContentType, obj.Data, len(obj.Data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store media object: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, key string) (Object, error) {
	obj := Object{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data FROM media_objects WHERE key = $1`, key).Scan(&obj.ContentType, &obj.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("failed to load media object: %w", err)
	}
	return obj, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_objects WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete media object: %w", err)
	}
	return nil
}
