// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/bausite/design"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type Element struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
	Order    int    `yaml:"order"`
}

type Names struct {
	Name   string `yaml:"name"`
	NameEN string `yaml:"name_en"`
	NameDE string `yaml:"name_de"`
}

func (n Names) localized() models.LocalizedName {
	return models.LocalizedName{Name: n.Name, NameEN: n.NameEN, NameDE: n.NameDE}
}

type Question struct {
	Names `yaml:",inline"`
	Field string `yaml:"field"`
	Order int    `yaml:"order"`
}

type Subcategory struct {
	Names     `yaml:",inline"`
	Slug      string     `yaml:"slug"`
	Order     int        `yaml:"order"`
	Questions []Question `yaml:"questions"`
}

type RequestCategory struct {
	Names         `yaml:",inline"`
	Slug          string        `yaml:"slug"`
	Order         int           `yaml:"order"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

type Project struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Year        int    `yaml:"year"`
	Type        string `yaml:"type"`
	Size        string `yaml:"size"`
	Color       string `yaml:"color"`
	// EndInDays is relative to the day the fixtures are loaded
	EndInDays int `yaml:"end_in_days"`
}

type Support struct {
	Name         string `yaml:"name"`
	Phone        string `yaml:"phone"`
	Email        string `yaml:"email"`
	Reason       string `yaml:"reason"`
	Message      string `yaml:"message"`
	Status       string `yaml:"status"`
	MessageAdmin string `yaml:"message_admin"`
}

// Fixtures is the content of fixtures.yaml
type Fixtures struct {
	Elements   []Element         `yaml:"elements"`
	Taxonomy   []RequestCategory `yaml:"taxonomy"`
	Categories []Names           `yaml:"categories"`
	Projects   []Project         `yaml:"projects"`
	Support    []Support         `yaml:"support"`
}

// Parse decodes fixtures and rejects rows the store would refuse anyway.
func Parse(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	for _, e := range f.Elements {
		if e.Selector == "" {
			return Fixtures{}, errors.New("parse fixtures: element without selector")
		}
	}
	for _, c := range f.Taxonomy {
		if c.Slug == "" {
			return Fixtures{}, errors.New("parse fixtures: request category without slug")
		}
		for _, sub := range c.Subcategories {
			if sub.Slug == "" {
				return Fixtures{}, fmt.Errorf("parse fixtures: subcategory without slug in %q", c.Slug)
			}
		}
	}
	for _, p := range f.Projects {
		if p.Code == "" {
			return Fixtures{}, errors.New("parse fixtures: project without code")
		}
		if !models.Contains(models.ProjectStatuses, p.Status) {
			return Fixtures{}, fmt.Errorf("parse fixtures: project %s has status %q", p.Code, p.Status)
		}
	}
	for _, s := range f.Support {
		if s.Email == "" {
			return Fixtures{}, errors.New("parse fixtures: support request without email")
		}
	}
	return f, nil
}

// Load returns the embedded fixtures.
func Load() (Fixtures, error) {
	return Parse(fixturesYAML)
}

// Result counts what a seeding step did
type Result struct {
	Created int
	Skipped int
}

func (r *Result) add(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

// Seeder writes fixtures into the store. Every step can run any number of
// times; rows that already exist are left alone.
type Seeder struct {
	store    *store.Store
	logger   *zap.Logger
	fixtures Fixtures
	now      func() time.Time
}

func New(st *store.Store, fixtures Fixtures, logger *zap.Logger) *Seeder {
	return &Seeder{store: st, logger: logger, fixtures: fixtures, now: time.Now}
}

// Elements creates the default inactive element rows by selector.
func (s *Seeder) Elements(ctx context.Context) (Result, error) {
	var res Result
	for _, e := range s.fixtures.Elements {
		_, created, err := s.store.GetOrCreateElement(ctx, design.ElementSettings{
			ElementName:  e.Name,
			SelectorType: design.SelectorTag,
			CSSSelector:  e.Selector,
			Order:        e.Order,
			IsActive:     false,
		})
		if err != nil {
			return res, fmt.Errorf("seed element %s: %w", e.Selector, err)
		}
		res.add(created)
		if created {
			s.logger.Info("element created", zap.String("selector", e.Selector))
		} else {
			s.logger.Debug("element exists", zap.String("selector", e.Selector))
		}
	}
	return res, nil
}

// Taxonomy creates the starter request categories, subcategories and questions.
func (s *Seeder) Taxonomy(ctx context.Context) (Result, error) {
	var res Result
	for _, fc := range s.fixtures.Taxonomy {
		category, err := s.store.GetRequestCategoryBySlug(ctx, fc.Slug)
		created := false
		if errors.Is(err, store.ErrNotFound) {
			category = models.RequestCategory{LocalizedName: fc.localized(), Slug: fc.Slug, Order: fc.Order}
			err = s.store.CreateRequestCategory(ctx, &category)
			created = true
		}
		if err != nil {
			return res, fmt.Errorf("seed request category %s: %w", fc.Slug, err)
		}
		res.add(created)

		for _, fs := range fc.Subcategories {
			sub, err := s.store.GetSubcategoryBySlug(ctx, category.ID, fs.Slug)
			created := false
			if errors.Is(err, store.ErrNotFound) {
				sub = models.RequestSubcategory{CategoryID: category.ID, LocalizedName: fs.localized(), Slug: fs.Slug, Order: fs.Order}
				err = s.store.CreateSubcategory(ctx, &sub)
				created = true
			}
			if err != nil {
				return res, fmt.Errorf("seed subcategory %s/%s: %w", fc.Slug, fs.Slug, err)
			}
			res.add(created)

			if err := s.questions(ctx, sub.ID, fs.Questions, &res); err != nil {
				return res, fmt.Errorf("seed questions of %s/%s: %w", fc.Slug, fs.Slug, err)
			}
		}
	}
	s.logger.Info("taxonomy seeded", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *Seeder) questions(ctx context.Context, subcategoryID int64, questions []Question, res *Result) error {
	existing, err := s.store.ListQuestions(ctx, subcategoryID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, q := range existing {
		have[q.FieldName] = true
	}

	for _, fq := range questions {
		if have[fq.Field] {
			res.add(false)
			continue
		}
		q := models.RequestQuestion{SubcategoryID: subcategoryID, LocalizedName: fq.localized(), FieldName: fq.Field, Order: fq.Order}
		if err := s.store.CreateQuestion(ctx, &q); err != nil {
			return err
		}
		res.add(true)
	}
	return nil
}

// Demo creates project categories, projects and support requests for a
// fresh installation. Projects go into the first category.
func (s *Seeder) Demo(ctx context.Context) (Result, error) {
	var res Result

	categoryID, err := s.categories(ctx, &res)
	if err != nil {
		return res, err
	}
	if err := s.projects(ctx, categoryID, &res); err != nil {
		return res, err
	}
	if err := s.support(ctx, &res); err != nil {
		return res, err
	}

	s.logger.Info("demo data seeded", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

// categories matches existing rows by German name and returns the id of the first fixture
func (s *Seeder) categories(ctx context.Context, res *Result) (*int64, error) {
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		byName[c.NameDE] = c.ID
	}

	var first *int64
	for _, fc := range s.fixtures.Categories {
		id, ok := byName[fc.NameDE]
		if !ok {
			c := models.Category{Name: fc.Name, NameEN: fc.NameEN, NameDE: fc.NameDE}
			if err := s.store.CreateCategory(ctx, &c); err != nil {
				return nil, fmt.Errorf("seed category %s: %w", fc.NameDE, err)
			}
			id = c.ID
			byName[fc.NameDE] = id
		}
		res.add(!ok)
		if first == nil {
			first = &id
		}
	}
	return first, nil
}

func (s *Seeder) projects(ctx context.Context, categoryID *int64, res *Result) error {
	existing, err := s.store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}
	codes := make(map[string]bool, len(existing))
	for _, p := range existing {
		codes[p.ProjectCode] = true
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, fp := range s.fixtures.Projects {
		if codes[fp.Code] {
			res.add(false)
			continue
		}
		year := fp.Year
		end := today.AddDate(0, 0, fp.EndInDays)
		p := models.AdminProject{
			ProjectCode: fp.Code,
			Name:        fp.Name,
			Description: fp.Description,
			CategoryID:  categoryID,
			Status:      fp.Status,
			Year:        &year,
			Type:        fp.Type,
			Size:        fp.Size,
			Color:       fp.Color,
			EndDate:     &end,
		}
		if err := s.store.CreateProject(ctx, &p); err != nil {
			return fmt.Errorf("seed project %s: %w", fp.Code, err)
		}
		res.add(true)
	}
	return nil
}

func (s *Seeder) support(ctx context.Context, res *Result) error {
	for _, fs := range s.fixtures.Support {
		existing, err := s.store.ListContactRequests(ctx, store.ContactFilter{Email: fs.Email, Limit: 1})
		if err != nil {
			return fmt.Errorf("seed support request %s: %w", fs.Email, err)
		}
		if len(existing) > 0 {
			res.add(false)
			continue
		}
		c := models.ContactRequest{
			Name:         fs.Name,
			Phone:        fs.Phone,
			Email:        fs.Email,
			Reason:       fs.Reason,
			Message:      fs.Message,
			Status:       fs.Status,
			MessageAdmin: fs.MessageAdmin,
		}
		if err := s.store.CreateContactRequest(ctx, &c); err != nil {
			return fmt.Errorf("seed support request %s: %w", fs.Email, err)
		}
		res.add(true)
	}
	return nil
}
