// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/bausite/models"
)

// MaxHeroImages caps the homepage carousel.
const MaxHeroImages = 10

// PortfolioPerPage is the homepage project page size.
const PortfolioPerPage = 3

// Tables whose rows carry an uploaded image.
const (
	ImageTableHero      = "hero_images"
	ImageTableService   = "services"
	ImageTablePortfolio = "portfolio_projects"
)

// GetSiteSettings returns the singleton row, creating it on first use
func (s *Store) GetSiteSettings(ctx context.Context) (models.SiteSettings, error) {
	var st models.SiteSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT logo_type, logo_name FROM site_settings WHERE id = 1`).Scan(&st.LogoType, &st.LogoName)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.ExecContext(ctx, `INSERT INTO site_settings (id, logo_type, logo_name) VALUES (1, '', '')`)
		if err != nil && !isUniqueViolation(err) {
			return st, wrap("create site settings", err)
		}
		return st, nil
	}
	return st, wrap("get site settings", err)
}

func (s *Store) SetLogo(ctx context.Context, contentType, name string) error {
	if _, err := s.GetSiteSettings(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE site_settings SET logo_type = $1, logo_name = $2 WHERE id = 1`, contentType, name)
	return wrap("set logo", err)
}

// SetImage records image metadata on a content row
func (s *Store) SetImage(ctx context.Context, table string, id int64, contentType, name string) error {
	switch table {
	case ImageTableHero, ImageTableService, ImageTablePortfolio:
	default:
		return fmt.Errorf("set image: unknown table %q", table)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET image_type = $1, image_name = $2 WHERE id = $3`, contentType, name, id)
	return affected("set image", res, err)
}

// Hero carousel

func (s *Store) ListHeroImages(ctx context.Context) ([]models.HeroImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sort_order, alt, image_type, image_name FROM hero_images
		ORDER BY sort_order, id
		LIMIT $1
	`, MaxHeroImages)
	if err != nil {
		return nil, wrap("list hero images", err)
	}
	defer rows.Close()

	out := []models.HeroImage{}
	for rows.Next() {
		var h models.HeroImage
		if err := rows.Scan(&h.ID, &h.Order, &h.Alt, &h.ImageType, &h.ImageName); err != nil {
			return nil, wrap("scan hero image", err)
		}
		out = append(out, h)
	}
	return out, wrap("list hero images", rows.Err())
}

func (s *Store) GetHeroImage(ctx context.Context, id int64) (models.HeroImage, error) {
	var h models.HeroImage
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sort_order, alt, image_type, image_name FROM hero_images WHERE id = $1`, id,
	).Scan(&h.ID, &h.Order, &h.Alt, &h.ImageType, &h.ImageName)
	return h, wrap("get hero image", err)
}

// CreateHeroImage refuses to grow the carousel past MaxHeroImages
func (s *Store) CreateHeroImage(ctx context.Context, h *models.HeroImage) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM hero_images`).Scan(&n); err != nil {
			return wrap("count hero images", err)
		}
		if n >= MaxHeroImages {
			return fmt.Errorf("create hero image: at most %d images: %w", MaxHeroImages, ErrLimitReached)
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO hero_images (sort_order, alt, image_type, image_name)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, h.Order, h.Alt, h.ImageType, h.ImageName).Scan(&h.ID)
		return wrap("create hero image", err)
	})
}

func (s *Store) DeleteHeroImage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hero_images WHERE id = $1`, id)
	return affected("delete hero image", res, err)
}

// Services

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, sort_order, image_type, image_name FROM services
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, wrap("list services", err)
	}
	defer rows.Close()

	out := []models.Service{}
	for rows.Next() {
		var sv models.Service
		if err := rows.Scan(&sv.ID, &sv.Title, &sv.Description, &sv.Order, &sv.ImageType, &sv.ImageName); err != nil {
			return nil, wrap("scan service", err)
		}
		out = append(out, sv)
	}
	return out, wrap("list services", rows.Err())
}

func (s *Store) GetService(ctx context.Context, id int64) (models.Service, error) {
	var sv models.Service
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, sort_order, image_type, image_name FROM services WHERE id = $1`, id,
	).Scan(&sv.ID, &sv.Title, &sv.Description, &sv.Order, &sv.ImageType, &sv.ImageName)
	return sv, wrap("get service", err)
}

func (s *Store) CreateService(ctx context.Context, sv *models.Service) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO services (title, description, sort_order, image_type, image_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sv.Title, sv.Description, sv.Order, sv.ImageType, sv.ImageName).Scan(&sv.ID)
	return wrap("create service", err)
}

func (s *Store) UpdateService(ctx context.Context, sv models.Service) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE services SET title = $1, description = $2, sort_order = $3 WHERE id = $4
	`, sv.Title, sv.Description, sv.Order, sv.ID)
	return affected("update service", res, err)
}

func (s *Store) DeleteService(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	return affected("delete service", res, err)
}

// Portfolio

const portfolioColumns = `id, title, description, link, address, sort_order, image_type, image_name`

func scanPortfolio(row scanner) (models.PortfolioProject, error) {
	var p models.PortfolioProject
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Link, &p.Address, &p.Order, &p.ImageType, &p.ImageName)
	return p, err
}

func (s *Store) queryPortfolio(ctx context.Context, query string, args ...any) ([]models.PortfolioProject, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list portfolio", err)
	}
	defer rows.Close()

	out := []models.PortfolioProject{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, wrap("scan portfolio project", err)
		}
		out = append(out, p)
	}
	return out, wrap("list portfolio", rows.Err())
}

func (s *Store) ListPortfolio(ctx context.Context) ([]models.PortfolioProject, error) {
	return s.queryPortfolio(ctx, `SELECT `+portfolioColumns+` FROM portfolio_projects ORDER BY sort_order, id`)
}

// PortfolioPage returns one homepage page of showcase projects
func (s *Store) PortfolioPage(ctx context.Context, page int) (models.Page[models.PortfolioProject], error) {
	var result models.Page[models.PortfolioProject]
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolio_projects`).Scan(&total); err != nil {
		return result, wrap("count portfolio", err)
	}

	number, numPages, offset := Paginate(total, PortfolioPerPage, page)
	items, err := s.queryPortfolio(ctx, `SELECT `+portfolioColumns+` FROM portfolio_projects
		ORDER BY sort_order, id LIMIT $1 OFFSET $2`, PortfolioPerPage, offset)
	if err != nil {
		return result, err
	}

	return models.Page[models.PortfolioProject]{
		Items:      items,
		Number:     number,
		NumPages:   numPages,
		HasNext:    number < numPages,
		HasPrev:    number > 1,
		TotalCount: total,
	}, nil
}

func (s *Store) GetPortfolioProject(ctx context.Context, id int64) (models.PortfolioProject, error) {
	p, err := scanPortfolio(s.db.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio_projects WHERE id = $1`, id))
	return p, wrap("get portfolio project", err)
}

func (s *Store) CreatePortfolioProject(ctx context.Context, p *models.PortfolioProject) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO portfolio_projects (title, description, link, address, sort_order, image_type, image_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.Title, p.Description, p.Link, p.Address, p.Order, p.ImageType, p.ImageName).Scan(&p.ID)
	return wrap("create portfolio project", err)
}

func (s *Store) UpdatePortfolioProject(ctx context.Context, p models.PortfolioProject) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE portfolio_projects SET title = $1, description = $2, link = $3, address = $4, sort_order = $5
		WHERE id = $6
	`, p.Title, p.Description, p.Link, p.Address, p.Order, p.ID)
	return affected("update portfolio project", res, err)
}

func (s *Store) DeletePortfolioProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portfolio_projects WHERE id = $1`, id)
	return affected("delete portfolio project", res, err)
}
