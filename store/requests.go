// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/db"
	"github.com/danielhkuo/bausite/models"
)

// RequestFilter narrows request listings. Zero values disable a filter.
type RequestFilter struct {
	// Owner restricts to rows linked to the user or submitted with their email
	OwnerID    int64
	OwnerEmail string

	DateFrom   *time.Time
	DateTo     *time.Time
	Status     string
	CategoryID int64
	Search     string
}

func (f RequestFilter) where() (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.OwnerID != 0 || f.OwnerEmail != "" {
		clauses = append(clauses, fmt.Sprintf("(r.user_id = %s OR r.email = %s)", arg(f.OwnerID), arg(f.OwnerEmail)))
	}
	if f.DateFrom != nil {
		from := dayStart(*f.DateFrom)
		clauses = append(clauses, "r.created_at >= "+arg(from))
	}
	if f.DateTo != nil {
		until := dayStart(*f.DateTo).AddDate(0, 0, 1)
		clauses = append(clauses, "r.created_at < "+arg(until))
	}
	if f.Status != "" {
		clauses = append(clauses, "r.status = "+arg(f.Status))
	}
	if f.CategoryID != 0 {
		clauses = append(clauses, "r.category_id = "+arg(f.CategoryID))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		compact := strings.ReplaceAll(search, " ", "")
		if id, ok := digitsOnly(compact); ok {
			clauses = append(clauses, "r.id = "+arg(id))
		} else {
			p := arg("%" + likeEscaper.Replace(search) + "%")
			clauses = append(clauses, fmt.Sprintf(
				`(%[1]s(r.name) LIKE %[1]s(%[2]s) ESCAPE '\' OR %[1]s(r.email) LIKE %[1]s(%[2]s) ESCAPE '\')`,
				db.CaseFold, p))
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// likeEscaper makes a search term match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func digitsOnly(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

const requestSelect = `
	SELECT r.id, r.user_id, r.name, r.phone, r.email, r.message, r.category_id, r.subcategory_id,
		r.extra_answers, r.created_at, r.status, r.amount, r.message_admin, r.admin_id,
		c.name, c.name_en, c.name_de, sc.name, sc.name_en, sc.name_de
	FROM requests r
	LEFT JOIN request_categories c ON c.id = r.category_id
	LEFT JOIN request_subcategories sc ON sc.id = r.subcategory_id`

func scanRequest(row scanner) (models.Request, error) {
	var r models.Request
	var userID, categoryID, subcategoryID, adminID sql.NullInt64
	var amount sql.NullFloat64
	var extra []byte
	var cat, sub [3]sql.NullString
	err := row.Scan(&r.ID, &userID, &r.Name, &r.Phone, &r.Email, &r.Message, &categoryID, &subcategoryID,
		&extra, &r.CreatedAt, &r.Status, &amount, &r.MessageAdmin, &adminID,
		&cat[0], &cat[1], &cat[2], &sub[0], &sub[1], &sub[2])
	if err != nil {
		return r, err
	}

	r.UserID = idPtr(userID)
	r.CategoryID = idPtr(categoryID)
	r.SubcategoryID = idPtr(subcategoryID)
	r.AdminID = idPtr(adminID)
	if amount.Valid {
		a := amount.Float64
		r.Amount = &a
	}
	r.ExtraAnswers = map[string]string{}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &r.ExtraAnswers); err != nil {
			return r, fmt.Errorf("decode extra_answers: %w", err)
		}
	}
	if categoryID.Valid {
		r.CategoryName = models.LocalizedName{Name: cat[0].String, NameEN: cat[1].String, NameDE: cat[2].String}.In("")
	}
	if subcategoryID.Valid {
		r.SubcategoryName = models.LocalizedName{Name: sub[0].String, NameEN: sub[1].String, NameDE: sub[2].String}.In("")
	}
	return r, nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list requests", err)
	}
	defer rows.Close()

	out := []models.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, wrap("scan request", err)
		}
		out = append(out, r)
	}
	return out, wrap("list requests", rows.Err())
}

// ListRequests returns matching requests, most recent first
func (s *Store) ListRequests(ctx context.Context, f RequestFilter) ([]models.Request, error) {
	where, args := f.where()
	return s.queryRequests(ctx, requestSelect+where+` ORDER BY r.created_at DESC, r.id DESC`, args...)
}

func (s *Store) RecentRequests(ctx context.Context, limit int) ([]models.Request, error) {
	return s.queryRequests(ctx, requestSelect+` ORDER BY r.created_at DESC, r.id DESC LIMIT $1`, limit)
}

func (s *Store) GetRequest(ctx context.Context, id int64) (models.Request, error) {
	r, err := scanRequest(s.db.QueryRowContext(ctx, requestSelect+` WHERE r.id = $1`, id))
	return r, wrap("get request", err)
}

func (s *Store) CountRequestsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, wrap("count requests", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrap("scan request count", err)
		}
		counts[status] = n
	}
	return counts, wrap("count requests", rows.Err())
}

func (s *Store) CreateRequest(ctx context.Context, r *models.Request) error {
	if r.ExtraAnswers == nil {
		r.ExtraAnswers = map[string]string{}
	}
	extra, err := json.Marshal(r.ExtraAnswers)
	if err != nil {
		return fmt.Errorf("encode extra_answers: %w", err)
	}
	if r.Status == "" {
		r.Status = models.RequestStatusNew
	}
	r.CreatedAt = s.now()

	var amount any
	if r.Amount != nil {
		amount = *r.Amount
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO requests (user_id, name, phone, email, message, category_id, subcategory_id,
			extra_answers, created_at, status, amount, message_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, nullID(r.UserID), r.Name, r.Phone, r.Email, r.Message, nullID(r.CategoryID), nullID(r.SubcategoryID),
		string(extra), r.CreatedAt, r.Status, amount, r.MessageAdmin).Scan(&r.ID)
	if err != nil {
		return wrap("create request", err)
	}
	s.logger.Info("request created", zap.Int64("request_id", r.ID), zap.String("email", r.Email))
	return nil
}

// UpdateRequestContact applies an owner's edit of the contact fields
func (s *Store) UpdateRequestContact(ctx context.Context, id int64, u models.OwnerRequestUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET name = $1, phone = $2, email = $3, message = $4 WHERE id = $5
	`, u.Name, u.Phone, u.Email, u.Message, id)
	return affected("update request", res, err)
}

// UpdateRequestByAdmin records an admin's status change and reply
func (s *Store) UpdateRequestByAdmin(ctx context.Context, id int64, u models.AdminRequestUpdate, adminID int64) error {
	var amount any
	if u.Amount != nil {
		amount = *u.Amount
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET status = $1, message_admin = $2, amount = $3, admin_id = $4 WHERE id = $5
	`, u.Status, u.MessageAdmin, amount, adminID, id)
	return affected("update request", res, err)
}

func (s *Store) DeleteRequest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err := affected("delete request", res, err); err != nil {
		return err
	}
	s.logger.Info("request deleted", zap.Int64("request_id", id))
	return nil
}

// Stages

type stageTemplate struct {
	title       string
	description string
}

var defaultStages = map[string][]stageTemplate{
	models.StageTypeHistory: {
		{"Processing the request", "Description"},
		{"Request accepted", "Description"},
		{"Selecting specialists", "Description"},
		{"Work started", "Description"},
	},
	models.StageTypeProject: {
		{"Stage 1", "Stage name"},
		{"Stage 2", "Stage name"},
		{"Stage 3", "Stage name"},
		{"Stage 4", "Stage name"},
	},
}

func (s *Store) ListStages(ctx context.Context, requestID int64, stageType string) ([]models.RequestStage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, title, description, sort_order, stage_type, created_at
		FROM request_stages
		WHERE request_id = $1 AND stage_type = $2
		ORDER BY sort_order, created_at, id
	`, requestID, stageType)
	if err != nil {
		return nil, wrap("list stages", err)
	}
	defer rows.Close()

	out := []models.RequestStage{}
	for rows.Next() {
		var st models.RequestStage
		if err := rows.Scan(&st.ID, &st.RequestID, &st.Title, &st.Description, &st.Order, &st.StageType, &st.CreatedAt); err != nil {
			return nil, wrap("scan stage", err)
		}
		out = append(out, st)
	}
	return out, wrap("list stages", rows.Err())
}

func (s *Store) CreateStage(ctx context.Context, st *models.RequestStage) error {
	st.CreatedAt = s.now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO request_stages (request_id, title, description, sort_order, stage_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, st.RequestID, st.Title, st.Description, st.Order, st.StageType, st.CreatedAt).Scan(&st.ID)
	return wrap("create stage", err)
}

func (s *Store) DeleteStage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM request_stages WHERE id = $1`, id)
	return affected("delete stage", res, err)
}

// EnsureDefaultStages seeds the four stock stages of stageType when the
// request has none, then returns the stages.
func (s *Store) EnsureDefaultStages(ctx context.Context, requestID int64, stageType string) ([]models.RequestStage, error) {
	stages, err := s.ListStages(ctx, requestID, stageType)
	if err != nil || len(stages) > 0 {
		return stages, err
	}

	templates, ok := defaultStages[stageType]
	if !ok {
		return nil, fmt.Errorf("unknown stage type %q", stageType)
	}

	now := s.now()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for i, t := range templates {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO request_stages (request_id, title, description, sort_order, stage_type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, requestID, t.title, t.description, i+1, stageType, now)
			if err != nil {
				return wrap("seed stages", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListStages(ctx, requestID, stageType)
}
