// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
)

var (
	slugPattern      = regexp.MustCompile(`^[-a-z0-9_]+$`)
	fieldNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// TaxonomyCategory is one node of the request taxonomy tree
type TaxonomyCategory struct {
	models.RequestCategory
	Subcategories []TaxonomySubcategory `json:"subcategories"`
}

type TaxonomySubcategory struct {
	models.RequestSubcategory
	Questions []models.RequestQuestion `json:"questions"`
}

func taxonomyNames(in models.TaxonomyInput) models.LocalizedName {
	return models.LocalizedName{
		Name:   strings.TrimSpace(in.Name),
		NameEN: strings.TrimSpace(in.NameEN),
		NameDE: strings.TrimSpace(in.NameDE),
	}
}

// validTaxonomyNode checks the fields shared by categories and subcategories
func validTaxonomyNode(in models.TaxonomyInput) (models.LocalizedName, string, string) {
	names := taxonomyNames(in)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if names.In("") == "" {
		return names, slug, "a name is required"
	}
	if !slugPattern.MatchString(slug) {
		return names, slug, "slug may contain only lowercase letters, digits, - and _"
	}
	return names, slug, ""
}

// ListTaxonomy handles GET /adminka/request-categories
func (h *AdminHandler) ListTaxonomy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.store.ListRequestCategories(ctx)
	if err != nil {
		storeError(w, h.logger, err, "categories")
		return
	}

	tree := make([]TaxonomyCategory, 0, len(categories))
	for _, c := range categories {
		subs, err := h.store.ListSubcategories(ctx, c.ID)
		if err != nil {
			storeError(w, h.logger, err, "subcategories")
			return
		}
		node := TaxonomyCategory{RequestCategory: c, Subcategories: make([]TaxonomySubcategory, 0, len(subs))}
		for _, s := range subs {
			questions, err := h.store.ListQuestions(ctx, s.ID)
			if err != nil {
				storeError(w, h.logger, err, "questions")
				return
			}
			node.Subcategories = append(node.Subcategories, TaxonomySubcategory{RequestSubcategory: s, Questions: questions})
		}
		tree = append(tree, node)
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"categories": tree})
}

// CreateRequestCategory handles POST /adminka/request-categories
func (h *AdminHandler) CreateRequestCategory(w http.ResponseWriter, r *http.Request) {
	var in models.TaxonomyInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	names, slug, msg := validTaxonomyNode(in)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	c := models.RequestCategory{LocalizedName: names, Slug: slug, Order: in.Order}
	if err := h.store.CreateRequestCategory(r.Context(), &c); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "slug is already used")
			return
		}
		storeError(w, h.logger, err, "category")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// DeleteRequestCategory handles POST /adminka/request-categories/{id}/delete
func (h *AdminHandler) DeleteRequestCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteRequestCategory(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "category")
		return
	}
	deleted(w, "Category")
}

// CreateSubcategory handles POST /adminka/request-subcategories
func (h *AdminHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var in models.TaxonomyInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	names, slug, msg := validTaxonomyNode(in)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if _, err := h.store.GetRequestCategory(r.Context(), in.ParentID); err != nil {
		if isNotFound(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown category")
			return
		}
		storeError(w, h.logger, err, "category")
		return
	}

	s := models.RequestSubcategory{CategoryID: in.ParentID, LocalizedName: names, Slug: slug, Order: in.Order}
	if err := h.store.CreateSubcategory(r.Context(), &s); err != nil {
		if isDuplicate(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "slug is already used in this category")
			return
		}
		storeError(w, h.logger, err, "subcategory")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, s)
}

// DeleteSubcategory handles POST /adminka/request-subcategories/{id}/delete
func (h *AdminHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteSubcategory(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "subcategory")
		return
	}
	deleted(w, "Subcategory")
}

// CreateQuestion handles POST /adminka/request-questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in models.TaxonomyInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	names := taxonomyNames(in)
	if names.In("") == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question text is required")
		return
	}
	field := strings.TrimSpace(in.FieldName)
	if !fieldNamePattern.MatchString(field) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "field_name may contain only lowercase letters, digits and _")
		return
	}
	if _, err := h.store.GetSubcategory(r.Context(), in.ParentID); err != nil {
		if isNotFound(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown subcategory")
			return
		}
		storeError(w, h.logger, err, "subcategory")
		return
	}

	q := models.RequestQuestion{SubcategoryID: in.ParentID, LocalizedName: names, FieldName: field, Order: in.Order}
	if err := h.store.CreateQuestion(r.Context(), &q); err != nil {
		storeError(w, h.logger, err, "question")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, q)
}

// DeleteQuestion handles POST /adminka/request-questions/{id}/delete
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteQuestion(r.Context(), id); err != nil {
		storeError(w, h.logger, err, "question")
		return
	}
	deleted(w, "Question")
}
