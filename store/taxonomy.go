// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/danielhkuo/bausite/models"
)

func (s *Store) ListRequestCategories(ctx context.Context) ([]models.RequestCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_en, name_de, slug, sort_order FROM request_categories
		ORDER BY sort_order, name, id
	`)
	if err != nil {
		return nil, wrap("list request categories", err)
	}
	defer rows.Close()

	out := []models.RequestCategory{}
	for rows.Next() {
		var c models.RequestCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order); err != nil {
			return nil, wrap("scan request category", err)
		}
		out = append(out, c)
	}
	return out, wrap("list request categories", rows.Err())
}

func (s *Store) GetRequestCategory(ctx context.Context, id int64) (models.RequestCategory, error) {
	var c models.RequestCategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, name_en, name_de, slug, sort_order FROM request_categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order)
	return c, wrap("get request category", err)
}

func (s *Store) GetRequestCategoryBySlug(ctx context.Context, slug string) (models.RequestCategory, error) {
	var c models.RequestCategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, name_en, name_de, slug, sort_order FROM request_categories WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order)
	return c, wrap("get request category", err)
}

func (s *Store) CreateRequestCategory(ctx context.Context, c *models.RequestCategory) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO request_categories (name, name_en, name_de, slug, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Name, c.NameEN, c.NameDE, c.Slug, c.Order).Scan(&c.ID)
	return wrap("create request category", err)
}

// DeleteRequestCategory cascades to subcategories and questions
func (s *Store) DeleteRequestCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM request_categories WHERE id = $1`, id)
	return affected("delete request category", res, err)
}

// ListSubcategories returns only the children of categoryID
func (s *Store) ListSubcategories(ctx context.Context, categoryID int64) ([]models.RequestSubcategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, name_en, name_de, slug, sort_order FROM request_subcategories
		WHERE category_id = $1
		ORDER BY sort_order, name, id
	`, categoryID)
	if err != nil {
		return nil, wrap("list subcategories", err)
	}
	defer rows.Close()

	out := []models.RequestSubcategory{}
	for rows.Next() {
		var c models.RequestSubcategory
		if err := rows.Scan(&c.ID, &c.CategoryID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order); err != nil {
			return nil, wrap("scan subcategory", err)
		}
		out = append(out, c)
	}
	return out, wrap("list subcategories", rows.Err())
}

func (s *Store) GetSubcategory(ctx context.Context, id int64) (models.RequestSubcategory, error) {
	var c models.RequestSubcategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, name_en, name_de, slug, sort_order FROM request_subcategories WHERE id = $1
	`, id).Scan(&c.ID, &c.CategoryID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order)
	return c, wrap("get subcategory", err)
}

func (s *Store) GetSubcategoryBySlug(ctx context.Context, categoryID int64, slug string) (models.RequestSubcategory, error) {
	var c models.RequestSubcategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, name_en, name_de, slug, sort_order FROM request_subcategories
		WHERE category_id = $1 AND slug = $2
	`, categoryID, slug).Scan(&c.ID, &c.CategoryID, &c.Name, &c.NameEN, &c.NameDE, &c.Slug, &c.Order)
	return c, wrap("get subcategory", err)
}

func (s *Store) CreateSubcategory(ctx context.Context, c *models.RequestSubcategory) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO request_subcategories (category_id, name, name_en, name_de, slug, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.CategoryID, c.Name, c.NameEN, c.NameDE, c.Slug, c.Order).Scan(&c.ID)
	return wrap("create subcategory", err)
}

func (s *Store) DeleteSubcategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM request_subcategories WHERE id = $1`, id)
	return affected("delete subcategory", res, err)
}

// ListQuestions returns only the questions of subcategoryID
func (s *Store) ListQuestions(ctx context.Context, subcategoryID int64) ([]models.RequestQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subcategory_id, question_text, question_text_en, question_text_de, field_name, sort_order
		FROM request_questions
		WHERE subcategory_id = $1
		ORDER BY sort_order, id
	`, subcategoryID)
	if err != nil {
		return nil, wrap("list questions", err)
	}
	defer rows.Close()

	out := []models.RequestQuestion{}
	for rows.Next() {
		var q models.RequestQuestion
		if err := rows.Scan(&q.ID, &q.SubcategoryID, &q.Name, &q.NameEN, &q.NameDE, &q.FieldName, &q.Order); err != nil {
			return nil, wrap("scan question", err)
		}
		out = append(out, q)
	}
	return out, wrap("list questions", rows.Err())
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.RequestQuestion) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO request_questions (subcategory_id, question_text, question_text_en, question_text_de, field_name, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, q.SubcategoryID, q.Name, q.NameEN, q.NameDE, q.FieldName, q.Order).Scan(&q.ID)
	return wrap("create question", err)
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM request_questions WHERE id = $1`, id)
	return affected("delete question", res, err)
}
