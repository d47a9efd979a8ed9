// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/bausite/design"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
	"github.com/danielhkuo/bausite/testutil"
)

func floatPtr(v float64) *float64 { return &v }

func TestAdminka_RequiresStaff(t *testing.T) {
	f := newFixture(t)
	client := f.client("client@example.com")

	w := f.asStaff(f.admin().Dashboard, testutil.MakeRequest("GET", "/adminka", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = f.asStaff(f.admin().Dashboard, testutil.MakeRequest("GET", "/adminka", nil, f.headers(client)))
	testutil.AssertStatus(t, w, http.StatusForbidden)
	resp := decodeMap(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Forbidden", resp["message"])

	w = f.asStaff(f.admin().Dashboard, testutil.MakeRequest("GET", "/adminka", nil, map[string]string{"Authorization": "Bearer garbage"}))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.staff("admin@example.com")

	for i, status := range []string{models.ProjectStatusCompleted, models.ProjectStatusInProgress, models.ProjectStatusInProgress, models.ProjectStatusPlanned} {
		p := models.AdminProject{ProjectCode: fmt.Sprintf("P-%d", i), Name: "Project", Status: status}
		require.NoError(t, f.store.CreateProject(ctx, &p))
	}
	now := time.Now()
	for i := 0; i < 7; i++ {
		testutil.CreateTestRequest(t, f.db, nil, "x@example.com", models.RequestStatusNew, now.Add(time.Duration(i)*time.Minute))
	}
	testutil.CreateTestRequest(t, f.db, nil, "x@example.com", models.RequestStatusApproved, now)
	for _, status := range []string{models.ContactStatusNew, models.ContactStatusNew, models.ContactStatusClosed} {
		c := models.ContactRequest{Name: "A", Phone: "1", Email: "a@example.com", Reason: models.ReasonSupport, Status: status}
		require.NoError(t, f.store.CreateContactRequest(ctx, &c))
	}

	w := f.asStaff(f.admin().Dashboard, testutil.MakeRequest("GET", "/adminka", nil, f.headers(admin)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.DashboardResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, 4, resp.TotalProjects)
	assert.Equal(t, 1, resp.CompletedProjects)
	assert.Equal(t, 2, resp.InProgressProjects)
	assert.Equal(t, 2, resp.NewSupport)
	assert.Equal(t, 7, resp.NewApplications)
	assert.Len(t, resp.RecentApplications, dashboardRecent)
	assert.Len(t, resp.RecentSupport, 3)
}

func TestAdminProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.staff("admin@example.com")
	h := f.headers(admin)

	c := models.Category{NameDE: "Wohnbau"}
	require.NoError(t, f.store.CreateCategory(ctx, &c))

	in := models.ProjectInput{
		ProjectCode: "PRJ-2026-001",
		Name:        "Villa am See",
		CategoryID:  &c.ID,
		Year:        intPtr(2026),
		EndDate:     "2026-09-30",
	}
	w := f.asStaff(f.admin().CreateProject, testutil.MakeRequest("POST", "/adminka/projects", in, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.ActionResponse
	testutil.AssertJSON(t, w, &created)

	id := fmt.Sprint(created.ID)
	w = f.asStaff(f.admin().GetProject, testutil.MakeRequest("GET", "/adminka/projects/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var p models.AdminProject
	testutil.AssertJSON(t, w, &p)
	assert.Equal(t, models.ProjectStatusPlanned, p.Status)
	assert.Equal(t, "Wohnbau", p.CategoryName)
	require.NotNil(t, p.EndDate)
	assert.Equal(t, "2026-09-30", p.EndDate.Format(dateLayout))

	// Same code again
	w = f.asStaff(f.admin().CreateProject, testutil.MakeRequest("POST", "/adminka/projects", in, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	in.Status = models.ProjectStatusCompleted
	in.Name = "Villa am See II"
	w = f.asStaff(f.admin().UpdateProject, testutil.MakeRequest("PUT", "/adminka/projects/"+id, in, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &p)
	assert.Equal(t, "Villa am See II", p.Name)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)

	w = f.asStaff(f.admin().ListProjects, testutil.MakeRequest("GET", "/adminka/projects", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	var list struct {
		Projects []models.AdminProject `json:"projects"`
		Stats    models.ProjectStats   `json:"stats"`
	}
	testutil.AssertJSON(t, w, &list)
	assert.Len(t, list.Projects, 1)
	assert.Equal(t, 1, list.Stats.Completed)

	w = f.asStaff(f.admin().DeleteProject, testutil.MakeRequest("POST", "/adminka/projects/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().GetProject, testutil.MakeRequest("GET", "/adminka/projects/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminProjects_Validation(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))
	missing := int64(404)

	tests := []struct {
		name string
		in   models.ProjectInput
	}{
		{"missing code", models.ProjectInput{Name: "X"}},
		{"missing name", models.ProjectInput{ProjectCode: "X"}},
		{"bad status", models.ProjectInput{ProjectCode: "X", Name: "X", Status: "done"}},
		{"bad end date", models.ProjectInput{ProjectCode: "X", Name: "X", EndDate: "30.09.2026"}},
		{"unknown category", models.ProjectInput{ProjectCode: "X", Name: "X", CategoryID: &missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.asStaff(f.admin().CreateProject, testutil.MakeRequest("POST", "/adminka/projects", tt.in, h))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	w := f.asStaff(f.admin().UpdateProject, testutil.MakeRequest("PUT", "/adminka/projects/9", models.ProjectInput{ProjectCode: "X", Name: "X"}, h), "id", "9")
	testutil.AssertStatus(t, w, http.StatusNotFound)
	w = f.asStaff(f.admin().GetProject, testutil.MakeRequest("GET", "/adminka/projects/abc", nil, h), "id", "abc")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminProjects_CategoryLookupFailure(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))
	_, err := f.db.Exec(`DROP TABLE categories`)
	require.NoError(t, err)

	category := int64(1)
	in := models.ProjectInput{ProjectCode: "X", Name: "X", CategoryID: &category}
	w := f.asStaff(f.admin().CreateProject, testutil.MakeRequest("POST", "/adminka/projects", in, h))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	assert.Equal(t, "Database error", decodeMap(t, w)["error"])
}

func TestAdminCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().CreateCategory, testutil.MakeRequest("POST", "/adminka/categories", models.CategoryInput{}, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = f.asStaff(f.admin().CreateCategory, testutil.MakeRequest("POST", "/adminka/categories", models.CategoryInput{NameEN: "Housing"}, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.ActionResponse
	testutil.AssertJSON(t, w, &created)

	// Projects survive their category
	p := models.AdminProject{ProjectCode: "P-1", Name: "P", Status: models.ProjectStatusPlanned, CategoryID: &created.ID}
	require.NoError(t, f.store.CreateProject(ctx, &p))

	id := fmt.Sprint(created.ID)
	w = f.asStaff(f.admin().DeleteCategory, testutil.MakeRequest("POST", "/adminka/categories/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)

	saved, err := f.store.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, saved.CategoryID)

	w = f.asStaff(f.admin().ListCategories, testutil.MakeRequest("GET", "/adminka/categories", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, []any{}, decodeMap(t, w)["categories"])
}

func TestAdminSupport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.staff("admin@example.com")
	h := f.headers(admin)

	open := models.ContactRequest{Name: "A", Phone: "1", Email: "a@example.com", Reason: models.ReasonSupport}
	require.NoError(t, f.store.CreateContactRequest(ctx, &open))
	closed := models.ContactRequest{Name: "B", Phone: "2", Email: "b@example.com", Reason: models.ReasonOther, Status: models.ContactStatusClosed}
	require.NoError(t, f.store.CreateContactRequest(ctx, &closed))

	tests := []struct {
		query      string
		wantFilter string
		wantLen    int
	}{
		{"", "", 2},
		{"?status=closed", "closed", 1},
		{"?status=bogus", "", 2},
	}
	for _, tt := range tests {
		w := f.asStaff(f.admin().ListSupport, testutil.MakeRequest("GET", "/adminka/support"+tt.query, nil, h))
		testutil.AssertStatus(t, w, http.StatusOK)
		resp := decodeMap(t, w)
		assert.Equal(t, tt.wantFilter, resp["status_filter"], tt.query)
		assert.Len(t, resp["support_requests"], tt.wantLen, tt.query)
	}

	id := fmt.Sprint(open.ID)
	update := models.AdminSupportUpdate{Status: models.ContactStatusInProgress, MessageAdmin: "On it"}
	w := f.asStaff(f.admin().UpdateSupport, testutil.MakeRequest("PUT", "/adminka/support/"+id, update, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var c models.ContactRequest
	testutil.AssertJSON(t, w, &c)
	assert.Equal(t, models.ContactStatusInProgress, c.Status)
	assert.Equal(t, "On it", c.MessageAdmin)
	require.NotNil(t, c.AdminID)
	assert.Equal(t, admin.ID, *c.AdminID)

	w = f.asStaff(f.admin().UpdateSupport, testutil.MakeRequest("PUT", "/adminka/support/"+id, models.AdminSupportUpdate{Status: "done"}, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Empty status resets to new
	w = f.asStaff(f.admin().UpdateSupport, testutil.MakeRequest("PUT", "/adminka/support/"+id, models.AdminSupportUpdate{}, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &c)
	assert.Equal(t, models.ContactStatusNew, c.Status)

	w = f.asStaff(f.admin().DeleteSupport, testutil.MakeRequest("POST", "/adminka/support/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().GetSupport, testutil.MakeRequest("GET", "/adminka/support/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminRequests(t *testing.T) {
	f := newFixture(t)
	admin := f.staff("admin@example.com")
	h := f.headers(admin)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	first := testutil.CreateTestRequest(t, f.db, nil, "anna@example.com", models.RequestStatusNew, base)
	testutil.CreateTestRequest(t, f.db, nil, "bernd@example.com", models.RequestStatusApproved, base.AddDate(0, 1, 0))

	tests := []struct {
		query   string
		wantLen int
	}{
		{"", 2},
		{"?status=approved", 1},
		{"?date_from=2026-04-01", 1},
		{"?date_to=2026-03-10", 1},
		{"?search=anna", 1},
		{fmt.Sprintf("?search=%s", models.FormatDisplayNumber(first)), 1},
		{"?search=nobody", 0},
	}
	for _, tt := range tests {
		w := f.asStaff(f.admin().ListRequests, testutil.MakeRequest("GET", "/adminka/requests"+tt.query, nil, h))
		testutil.AssertStatus(t, w, http.StatusOK)
		assert.Len(t, decodeMap(t, w)["requests"], tt.wantLen, tt.query)
	}

	id := fmt.Sprint(first)
	update := models.AdminRequestUpdate{Status: models.RequestStatusApproved, MessageAdmin: "Offer sent", Amount: floatPtr(12500.5)}
	w := f.asStaff(f.admin().UpdateRequest, testutil.MakeRequest("PUT", "/adminka/requests/"+id, update, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var detail AdminRequestDetail
	testutil.AssertJSON(t, w, &detail)
	assert.Equal(t, models.RequestStatusApproved, detail.Request.Status)
	require.NotNil(t, detail.Request.Amount)
	assert.InDelta(t, 12500.5, *detail.Request.Amount, 0.001)
	assert.Equal(t, admin.ID, *detail.Request.AdminID)

	for _, bad := range []models.AdminRequestUpdate{
		{Status: "paid"},
		{Status: models.RequestStatusApproved, Amount: floatPtr(-1)},
	} {
		w = f.asStaff(f.admin().UpdateRequest, testutil.MakeRequest("PUT", "/adminka/requests/"+id, bad, h), "id", id)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}

	w = f.asStaff(f.admin().UpdateRequest, testutil.MakeRequest("PUT", "/adminka/requests/999", update, h), "id", "999")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = f.asStaff(f.admin().DeleteRequest, testutil.MakeRequest("POST", "/adminka/requests/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().GetRequest, testutil.MakeRequest("GET", "/adminka/requests/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminStages(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))
	reqID := testutil.CreateTestRequest(t, f.db, nil, "a@example.com", models.RequestStatusNew, time.Now())
	id := fmt.Sprint(reqID)

	w := f.asStaff(f.admin().CreateStage, testutil.MakeRequest("POST", "/adminka/requests/"+id+"/stages", models.StageInput{Title: "Survey", Order: 1}, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var history models.RequestStage
	testutil.AssertJSON(t, w, &history)
	assert.Equal(t, models.StageTypeHistory, history.StageType)

	w = f.asStaff(f.admin().CreateStage, testutil.MakeRequest("POST", "/adminka/requests/"+id+"/stages", models.StageInput{Title: "Foundation", StageType: models.StageTypeProject}, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusCreated)

	for _, bad := range []models.StageInput{{Title: " "}, {Title: "X", StageType: "other"}} {
		w = f.asStaff(f.admin().CreateStage, testutil.MakeRequest("POST", "/adminka/requests/"+id+"/stages", bad, h), "id", id)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}
	w = f.asStaff(f.admin().CreateStage, testutil.MakeRequest("POST", "/adminka/requests/999/stages", models.StageInput{Title: "X"}, h), "id", "999")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = f.asStaff(f.admin().GetRequest, testutil.MakeRequest("GET", "/adminka/requests/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	var detail AdminRequestDetail
	testutil.AssertJSON(t, w, &detail)
	require.Len(t, detail.HistoryStages, 1)
	require.Len(t, detail.ProjectStages, 1)
	assert.Equal(t, "Foundation", detail.ProjectStages[0].Title)

	stageID := fmt.Sprint(history.ID)
	w = f.asStaff(f.admin().DeleteStage, testutil.MakeRequest("POST", "/adminka/stages/"+stageID+"/delete", nil, h), "id", stageID)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().DeleteStage, testutil.MakeRequest("POST", "/adminka/stages/"+stageID+"/delete", nil, h), "id", stageID)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminTaxonomy(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().CreateRequestCategory, testutil.MakeRequest("POST", "/adminka/request-categories",
		models.TaxonomyInput{NameEN: "Roofing", Slug: "Roofing"}, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var cat models.RequestCategory
	testutil.AssertJSON(t, w, &cat)
	assert.Equal(t, "roofing", cat.Slug)

	w = f.asStaff(f.admin().CreateSubcategory, testutil.MakeRequest("POST", "/adminka/request-subcategories",
		models.TaxonomyInput{ParentID: cat.ID, NameEN: "Flat roof", Slug: "flat"}, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var sub models.RequestSubcategory
	testutil.AssertJSON(t, w, &sub)

	w = f.asStaff(f.admin().CreateQuestion, testutil.MakeRequest("POST", "/adminka/request-questions",
		models.TaxonomyInput{ParentID: sub.ID, NameEN: "Roof area?", FieldName: "roof_area"}, h))
	testutil.AssertStatus(t, w, http.StatusCreated)

	rejected := []struct {
		name    string
		handler http.HandlerFunc
		in      models.TaxonomyInput
	}{
		{"category without name", f.admin().CreateRequestCategory, models.TaxonomyInput{Slug: "x"}},
		{"category bad slug", f.admin().CreateRequestCategory, models.TaxonomyInput{NameEN: "X", Slug: "a b"}},
		{"category duplicate slug", f.admin().CreateRequestCategory, models.TaxonomyInput{NameEN: "X", Slug: "roofing"}},
		{"subcategory unknown parent", f.admin().CreateSubcategory, models.TaxonomyInput{ParentID: 999, NameEN: "X", Slug: "x"}},
		{"subcategory duplicate slug", f.admin().CreateSubcategory, models.TaxonomyInput{ParentID: cat.ID, NameEN: "X", Slug: "flat"}},
		{"question bad field name", f.admin().CreateQuestion, models.TaxonomyInput{ParentID: sub.ID, NameEN: "X", FieldName: "Roof-Area"}},
		{"question unknown parent", f.admin().CreateQuestion, models.TaxonomyInput{ParentID: 999, NameEN: "X", FieldName: "x"}},
		{"question without text", f.admin().CreateQuestion, models.TaxonomyInput{ParentID: sub.ID, FieldName: "x"}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			w := f.asStaff(tt.handler, testutil.MakeRequest("POST", "/adminka/taxonomy", tt.in, h))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	w = f.asStaff(f.admin().ListTaxonomy, testutil.MakeRequest("GET", "/adminka/request-categories", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	var tree struct {
		Categories []TaxonomyCategory `json:"categories"`
	}
	testutil.AssertJSON(t, w, &tree)
	require.Len(t, tree.Categories, 1)
	require.Len(t, tree.Categories[0].Subcategories, 1)
	require.Len(t, tree.Categories[0].Subcategories[0].Questions, 1)
	assert.Equal(t, "roof_area", tree.Categories[0].Subcategories[0].Questions[0].FieldName)

	// Deleting the category takes the whole branch with it
	id := fmt.Sprint(cat.ID)
	w = f.asStaff(f.admin().DeleteRequestCategory, testutil.MakeRequest("POST", "/adminka/request-categories/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	_, err := f.store.GetSubcategory(context.Background(), sub.ID)
	assert.True(t, isNotFound(err))
}

func TestAdminLogo(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().UpdateLogo, testutil.MakeMultipartRequest("PUT", "/adminka/site/logo", nil, nil, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	file := &testutil.Upload{Field: "logo", Filename: "logo.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")}
	w = f.asStaff(f.admin().UpdateLogo, testutil.MakeMultipartRequest("PUT", "/adminka/site/logo", nil, file, h))
	testutil.AssertStatus(t, w, http.StatusOK)

	var site models.SiteSettings
	testutil.AssertJSON(t, w, &site)
	assert.Equal(t, "logo.svg", site.LogoName)
	assert.Equal(t, media.URL(media.ModelSiteSettings, 1), site.LogoURL)

	obj, err := f.media.Get(context.Background(), media.Key(media.ModelSiteSettings, 1))
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", obj.ContentType)
}

func TestAdminHero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.headers(f.staff("admin@example.com"))

	file := &testutil.Upload{Field: imageField, Filename: "hero.jpg", ContentType: "application/octet-stream", Data: []byte("jpeg")}
	req := testutil.MakeMultipartRequest("POST", "/adminka/site/hero", map[string]string{"alt": "Facade", "order": "2"}, file, h)
	w := f.asStaff(f.admin().CreateHero, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var hero models.HeroImage
	testutil.AssertJSON(t, w, &hero)
	assert.Equal(t, "Facade", hero.Alt)
	assert.Equal(t, 2, hero.Order)
	assert.Equal(t, media.URL(media.ModelHeroImage, hero.ID), hero.ImageURL)

	// Non-image content types are stored as JPEG
	obj, err := f.media.Get(ctx, media.Key(media.ModelHeroImage, hero.ID))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)

	w = f.asStaff(f.admin().ListHero, testutil.MakeRequest("GET", "/adminka/site/hero", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	resp := decodeMap(t, w)
	assert.Len(t, resp["hero_images"], 1)
	assert.Equal(t, float64(store.MaxHeroImages), resp["max"])

	id := fmt.Sprint(hero.ID)
	w = f.asStaff(f.admin().DeleteHero, testutil.MakeRequest("POST", "/adminka/site/hero/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	_, err = f.media.Get(ctx, media.Key(media.ModelHeroImage, hero.ID))
	assert.ErrorIs(t, err, media.ErrNotFound)
}

func TestAdminHero_ConcurrentLimit(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	const attempts = store.MaxHeroImages + 5
	codes := make([]int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.MakeMultipartRequest("POST", "/adminka/site/hero", map[string]string{"alt": fmt.Sprint(i)}, nil, h)
			codes[i] = f.asStaff(f.admin().CreateHero, req).Code
		}(i)
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
			rejected++
		}
	}
	assert.Equal(t, store.MaxHeroImages, created)
	assert.Equal(t, 5, rejected)

	items, err := f.store.ListHeroImages(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, store.MaxHeroImages)
}

func TestAdminServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().CreateService, testutil.MakeMultipartRequest("POST", "/adminka/site/services", map[string]string{"title": "Only title"}, nil, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	file := &testutil.Upload{Field: imageField, Filename: "roof.png", ContentType: "image/png", Data: []byte("png")}
	fields := map[string]string{"title": "Roofing", "description": "Roofs of all kinds", "order": "1"}
	w = f.asStaff(f.admin().CreateService, testutil.MakeMultipartRequest("POST", "/adminka/site/services", fields, file, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var sv models.Service
	testutil.AssertJSON(t, w, &sv)
	assert.Equal(t, "roof.png", sv.ImageName)
	assert.NotEmpty(t, sv.ImageURL)

	// An update without a file keeps the stored image
	id := fmt.Sprint(sv.ID)
	fields["title"] = "Roofing & facades"
	w = f.asStaff(f.admin().UpdateService, testutil.MakeMultipartRequest("PUT", "/adminka/site/services/"+id, fields, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &sv)
	assert.Equal(t, "Roofing & facades", sv.Title)
	assert.Equal(t, "roof.png", sv.ImageName)
	_, err := f.media.Get(ctx, media.Key(media.ModelService, sv.ID))
	require.NoError(t, err)

	w = f.asStaff(f.admin().ListServices, testutil.MakeRequest("GET", "/adminka/site/services", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Len(t, decodeMap(t, w)["services"], 1)

	w = f.asStaff(f.admin().DeleteService, testutil.MakeRequest("POST", "/adminka/site/services/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	_, err = f.media.Get(ctx, media.Key(media.ModelService, sv.ID))
	assert.ErrorIs(t, err, media.ErrNotFound)
}

func TestAdminPortfolio(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().CreatePortfolio, testutil.MakeMultipartRequest("POST", "/adminka/site/projects", map[string]string{"link": "x"}, nil, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	fields := map[string]string{"title": "Haus Linde", "address": "Lindenweg 4", "link": "https://example.com/linde"}
	w = f.asStaff(f.admin().CreatePortfolio, testutil.MakeMultipartRequest("POST", "/adminka/site/projects", fields, nil, h))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var p models.PortfolioProject
	testutil.AssertJSON(t, w, &p)
	assert.Empty(t, p.ImageURL)

	id := fmt.Sprint(p.ID)
	file := &testutil.Upload{Field: imageField, Filename: "linde.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}
	w = f.asStaff(f.admin().UpdatePortfolio, testutil.MakeMultipartRequest("PUT", "/adminka/site/projects/"+id, fields, file, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &p)
	assert.Equal(t, media.URL(media.ModelProject, p.ID), p.ImageURL)

	w = f.asStaff(f.admin().UpdatePortfolio, testutil.MakeMultipartRequest("PUT", "/adminka/site/projects/999", fields, nil, h), "id", "999")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = f.asStaff(f.admin().DeletePortfolio, testutil.MakeRequest("POST", "/adminka/site/projects/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().ListPortfolio, testutil.MakeRequest("GET", "/adminka/site/projects", nil, h))
	assert.Equal(t, []any{}, decodeMap(t, w)["projects"])
}

func TestAdminDesign(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	w := f.asStaff(f.admin().UpdateDesign, testutil.MakeRequest("PUT", "/adminka/design", map[string]any{"primary_gold": "#C0A030", "body": 18}, h))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = f.asStaff(f.admin().GetDesign, testutil.MakeRequest("GET", "/adminka/design", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	var settings design.DesignSettings
	testutil.AssertJSON(t, w, &settings)
	assert.Equal(t, "#C0A030", settings.PrimaryGold)
	assert.Equal(t, 18, settings.Body)
	assert.Equal(t, design.DefaultDesignSettings().PrimaryDark, settings.PrimaryDark)

	for _, bad := range []map[string]any{{"primary_gold": "gold"}, {"spacing_md": -4}, {"font_primary": ""}} {
		w = f.asStaff(f.admin().UpdateDesign, testutil.MakeRequest("PUT", "/adminka/design", bad, h))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}

	w = f.asStaff(f.admin().GetDesign, testutil.MakeRequest("GET", "/adminka/design", nil, h))
	testutil.AssertJSON(t, w, &settings)
	assert.Equal(t, "#C0A030", settings.PrimaryGold)
}

func TestAdminElements(t *testing.T) {
	f := newFixture(t)
	h := f.headers(f.staff("admin@example.com"))

	body := map[string]any{"element_name": "Hero title", "css_selector": " .hero-title ", "font_size": 48, "color": "#FFF"}
	w := f.asStaff(f.admin().CreateElement, testutil.MakeRequest("POST", "/adminka/elements", body, h))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var view ElementView
	testutil.AssertJSON(t, w, &view)
	assert.Equal(t, ".hero-title", view.CSSSelector)
	assert.Equal(t, design.SelectorClass, view.SelectorType)
	assert.True(t, view.IsActive)
	assert.Equal(t, "font-size: 48px; color: #FFF;", view.CSSStyle)

	w = f.asStaff(f.admin().CreateElement, testutil.MakeRequest("POST", "/adminka/elements", body, h))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	for _, bad := range []map[string]any{
		{"css_selector": ""},
		{"css_selector": "p", "selector_type": "attribute"},
		{"css_selector": "p", "color": "red"},
		{"css_selector": "p", "padding_top": -1},
	} {
		w = f.asStaff(f.admin().CreateElement, testutil.MakeRequest("POST", "/adminka/elements", bad, h))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}

	// Partial update: null clears a value, absent fields stay
	id := fmt.Sprint(view.ID)
	w = f.asStaff(f.admin().UpdateElement, testutil.MakeRequest("PUT", "/adminka/elements/"+id, map[string]any{"font_size": nil, "is_active": false}, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &view)
	assert.Nil(t, view.FontSize)
	assert.Equal(t, "#FFF", view.Color)
	assert.Empty(t, view.CSSStyle)

	w = f.asStaff(f.admin().GetElement, testutil.MakeRequest("GET", "/adminka/elements/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = f.asStaff(f.admin().ListElements, testutil.MakeRequest("GET", "/adminka/elements", nil, h))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Len(t, decodeMap(t, w)["elements"], 1)

	w = f.asStaff(f.admin().DeleteElement, testutil.MakeRequest("POST", "/adminka/elements/"+id+"/delete", nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = f.asStaff(f.admin().GetElement, testutil.MakeRequest("GET", "/adminka/elements/"+id, nil, h), "id", id)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
