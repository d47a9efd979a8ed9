// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_en, name_de, created_at FROM categories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEN, &c.NameDE, &c.CreatedAt); err != nil {
			return nil, wrap("scan category", err)
		}
		categories = append(categories, c)
	}
	return categories, wrap("list categories", rows.Err())
}

func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, name_en, name_de, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.NameEN, &c.NameDE, &c.CreatedAt)
	return c, wrap("get category", err)
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	c.CreatedAt = s.now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, name_en, name_de, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.NameEN, c.NameDE, c.CreatedAt).Scan(&c.ID)
	return wrap("create category", err)
}

// DeleteCategory removes a category; its projects keep existing uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err := affected("delete category", res, err); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

const projectSelect = `
	SELECT p.id, p.project_code, p.name, p.description, p.category_id, p.status, p.year,
		p.type, p.size, p.color, p.end_date, p.created_at, p.updated_at,
		c.name, c.name_en, c.name_de
	FROM projects p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProject(row scanner) (models.AdminProject, error) {
	var p models.AdminProject
	var categoryID sql.NullInt64
	var year sql.NullInt64
	var endDate sql.NullTime
	var cName, cNameEN, cNameDE sql.NullString
	err := row.Scan(&p.ID, &p.ProjectCode, &p.Name, &p.Description, &categoryID, &p.Status, &year,
		&p.Type, &p.Size, &p.Color, &endDate, &p.CreatedAt, &p.UpdatedAt,
		&cName, &cNameEN, &cNameDE)
	if err != nil {
		return p, err
	}
	p.CategoryID = idPtr(categoryID)
	if year.Valid {
		y := int(year.Int64)
		p.Year = &y
	}
	p.EndDate = timePtr(endDate)
	if categoryID.Valid {
		p.CategoryName = models.Category{
			ID: categoryID.Int64, Name: cName.String, NameEN: cNameEN.String, NameDE: cNameDE.String,
		}.DisplayName()
	}
	return p, nil
}

// ListProjects returns admin projects, newest first
func (s *Store) ListProjects(ctx context.Context) ([]models.AdminProject, error) {
	rows, err := s.db.QueryContext(ctx, projectSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	defer rows.Close()

	projects := []models.AdminProject{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap("scan project", err)
		}
		projects = append(projects, p)
	}
	return projects, wrap("list projects", rows.Err())
}

func (s *Store) ProjectStats(ctx context.Context) (models.ProjectStats, error) {
	var stats models.ProjectStats
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return stats, wrap("project stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, wrap("scan project stats", err)
		}
		stats.Total += n
		switch status {
		case models.ProjectStatusCompleted:
			stats.Completed = n
		case models.ProjectStatusInProgress:
			stats.InProgress = n
		case models.ProjectStatusPlanned:
			stats.Planned = n
		}
	}
	return stats, wrap("project stats", rows.Err())
}

func (s *Store) GetProject(ctx context.Context, id int64) (models.AdminProject, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id))
	return p, wrap("get project", err)
}

func yearArg(y *int) any {
	if y == nil {
		return nil
	}
	return *y
}

func (s *Store) CreateProject(ctx context.Context, p *models.AdminProject) error {
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (project_code, name, description, category_id, status, year,
			type, size, color, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, p.ProjectCode, p.Name, p.Description, nullID(p.CategoryID), p.Status, yearArg(p.Year),
		p.Type, p.Size, p.Color, nullTime(p.EndDate), now, now).Scan(&p.ID)
	if err != nil {
		return wrap("create project", err)
	}
	s.logger.Info("project created", zap.Int64("project_id", p.ID), zap.String("code", p.ProjectCode))
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *models.AdminProject) error {
	p.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET project_code = $1, name = $2, description = $3, category_id = $4,
			status = $5, year = $6, type = $7, size = $8, color = $9, end_date = $10, updated_at = $11
		WHERE id = $12
	`, p.ProjectCode, p.Name, p.Description, nullID(p.CategoryID), p.Status, yearArg(p.Year),
		p.Type, p.Size, p.Color, nullTime(p.EndDate), p.UpdatedAt, p.ID)
	return affected("update project", res, err)
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return affected("delete project", res, err)
}
