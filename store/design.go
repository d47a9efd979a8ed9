// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/bausite/design"
)

// GetDesignSettings returns the stored settings layered over the defaults,
// creating the row on first use.
func (s *Store) GetDesignSettings(ctx context.Context) (design.DesignSettings, error) {
	settings := design.DefaultDesignSettings()

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM design_settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.SaveDesignSettings(ctx, settings); err != nil {
			return settings, err
		}
		return settings, nil
	}
	if err != nil {
		return settings, wrap("get design settings", err)
	}

	if err := json.Unmarshal(payload, &settings); err != nil {
		return settings, fmt.Errorf("decode design settings: %w", err)
	}
	return settings, nil
}

func (s *Store) SaveDesignSettings(ctx context.Context, settings design.DesignSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode design settings: %w", err)
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE design_settings SET payload = $1, updated_at = $2 WHERE id = 1`, string(payload), now)
	if err != nil {
		return wrap("save design settings", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO design_settings (id, payload, updated_at) VALUES (1, $1, $2)`, string(payload), now)
	return wrap("save design settings", err)
}

const elementColumns = `id, element_name, selector_type, css_selector, props, sort_order, is_active, created_at, updated_at`

func scanElement(row scanner) (design.ElementSettings, error) {
	var e design.ElementSettings
	var props []byte
	err := row.Scan(&e.ID, &e.ElementName, &e.SelectorType, &e.CSSSelector, &props,
		&e.Order, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(props, &e.ElementProps); err != nil {
		return e, fmt.Errorf("decode element props: %w", err)
	}
	return e, nil
}

// ListElements returns overrides ordered by order, then element name
func (s *Store) ListElements(ctx context.Context) ([]design.ElementSettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+elementColumns+` FROM element_settings ORDER BY sort_order, element_name, id`)
	if err != nil {
		return nil, wrap("list elements", err)
	}
	defer rows.Close()

	out := []design.ElementSettings{}
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, wrap("scan element", err)
		}
		out = append(out, e)
	}
	return out, wrap("list elements", rows.Err())
}

func (s *Store) GetElement(ctx context.Context, id int64) (design.ElementSettings, error) {
	e, err := scanElement(s.db.QueryRowContext(ctx,
		`SELECT `+elementColumns+` FROM element_settings WHERE id = $1`, id))
	return e, wrap("get element", err)
}

func (s *Store) GetElementBySelector(ctx context.Context, selector string) (design.ElementSettings, error) {
	e, err := scanElement(s.db.QueryRowContext(ctx,
		`SELECT `+elementColumns+` FROM element_settings WHERE css_selector = $1`, selector))
	return e, wrap("get element", err)
}

func (s *Store) CreateElement(ctx context.Context, e *design.ElementSettings) error {
	props, err := json.Marshal(e.ElementProps)
	if err != nil {
		return fmt.Errorf("encode element props: %w", err)
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO element_settings (element_name, selector_type, css_selector, props, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, e.ElementName, e.SelectorType, e.CSSSelector, string(props), e.Order, e.IsActive, now, now).Scan(&e.ID)
	return wrap("create element", err)
}

func (s *Store) UpdateElement(ctx context.Context, e *design.ElementSettings) error {
	props, err := json.Marshal(e.ElementProps)
	if err != nil {
		return fmt.Errorf("encode element props: %w", err)
	}
	e.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE element_settings SET element_name = $1, selector_type = $2, css_selector = $3, props = $4,
			sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`, e.ElementName, e.SelectorType, e.CSSSelector, string(props), e.Order, e.IsActive, e.UpdatedAt, e.ID)
	return affected("update element", res, err)
}

func (s *Store) DeleteElement(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM element_settings WHERE id = $1`, id)
	return affected("delete element", res, err)
}

// GetOrCreateElement looks e up by selector and inserts it when missing.
func (s *Store) GetOrCreateElement(ctx context.Context, e design.ElementSettings) (design.ElementSettings, bool, error) {
	existing, err := s.GetElementBySelector(ctx, e.CSSSelector)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return existing, false, err
	}
	if err := s.CreateElement(ctx, &e); err != nil {
		return e, false, err
	}
	return e, true, nil
}
