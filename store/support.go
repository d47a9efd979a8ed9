// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/models"
)

// ContactFilter narrows support listings. Email matches exactly.
type ContactFilter struct {
	Status string
	Email  string
	Limit  int
}

const contactColumns = `id, name, phone, email, reason, message, created_at, status, message_admin, admin_id`

func scanContact(row scanner) (models.ContactRequest, error) {
	var c models.ContactRequest
	var adminID sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Reason, &c.Message,
		&c.CreatedAt, &c.Status, &c.MessageAdmin, &adminID)
	c.AdminID = idPtr(adminID)
	return c, err
}

func (s *Store) CreateContactRequest(ctx context.Context, c *models.ContactRequest) error {
	if c.Reason == "" {
		c.Reason = models.ReasonSupport
	}
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}
	c.CreatedAt = s.now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_requests (name, phone, email, reason, message, created_at, status, message_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, c.Name, c.Phone, c.Email, c.Reason, c.Message, c.CreatedAt, c.Status, c.MessageAdmin).Scan(&c.ID)
	if err != nil {
		return wrap("create contact request", err)
	}
	s.logger.Info("support request created", zap.Int64("contact_id", c.ID), zap.String("reason", c.Reason))
	return nil
}

// ListContactRequests returns support messages, newest first
func (s *Store) ListContactRequests(ctx context.Context, f ContactFilter) ([]models.ContactRequest, error) {
	var clauses []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Email != "" {
		args = append(args, f.Email)
		clauses = append(clauses, "email = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + contactColumns + ` FROM contact_requests`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list contact requests", err)
	}
	defer rows.Close()

	out := []models.ContactRequest{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, wrap("scan contact request", err)
		}
		out = append(out, c)
	}
	return out, wrap("list contact requests", rows.Err())
}

func (s *Store) GetContactRequest(ctx context.Context, id int64) (models.ContactRequest, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_requests WHERE id = $1`, id))
	return c, wrap("get contact request", err)
}

func (s *Store) UpdateContactRequestByAdmin(ctx context.Context, id int64, u models.AdminSupportUpdate, adminID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contact_requests SET status = $1, message_admin = $2, admin_id = $3 WHERE id = $4
	`, u.Status, u.MessageAdmin, adminID, id)
	return affected("update contact request", res, err)
}

func (s *Store) DeleteContactRequest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_requests WHERE id = $1`, id)
	return affected("delete contact request", res, err)
}

func (s *Store) CountContactRequests(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_requests WHERE status = $1`, status).Scan(&n)
	return n, wrap("count contact requests", err)
}
