// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/design"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/testutil"
)

func TestHeroImageLimit(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxHeroImages; i++ {
		require.NoError(t, st.CreateHeroImage(ctx, &models.HeroImage{Order: i, Alt: fmt.Sprint(i)}))
	}
	err := st.CreateHeroImage(ctx, &models.HeroImage{Alt: "one too many"})
	assert.ErrorIs(t, err, ErrLimitReached)

	images, err := st.ListHeroImages(ctx)
	require.NoError(t, err)
	assert.Len(t, images, MaxHeroImages)
}

func TestPortfolioPage(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		require.NoError(t, st.CreatePortfolioProject(ctx, &models.PortfolioProject{Title: fmt.Sprintf("P%d", i), Order: i}))
	}

	page, err := st.PortfolioPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 3, page.NumPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 7, page.TotalCount)
	require.Len(t, page.Items, PortfolioPerPage)
	assert.Equal(t, "P4", page.Items[0].Title)

	// Out of range lands on the last page
	page, err = st.PortfolioPage(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "P7", page.Items[0].Title)
	assert.False(t, page.HasNext)
}

func TestSiteSettings(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	settings, err := st.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.LogoName)

	require.NoError(t, st.SetLogo(ctx, "image/png", "logo.png"))
	settings, err = st.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "image/png", settings.LogoType)
	assert.Equal(t, "logo.png", settings.LogoName)
}

func TestSetImage(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	sv := models.Service{Title: "Drywall"}
	require.NoError(t, st.CreateService(ctx, &sv))
	require.NoError(t, st.SetImage(ctx, ImageTableService, sv.ID, "image/jpeg", "wall.jpg"))

	got, err := st.GetService(ctx, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, "wall.jpg", got.ImageName)

	assert.ErrorIs(t, st.SetImage(ctx, ImageTableService, 999, "image/jpeg", "x.jpg"), ErrNotFound)
	assert.Error(t, st.SetImage(ctx, "users", sv.ID, "image/jpeg", "x.jpg"))
}

func TestDesignSettings(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	settings, err := st.GetDesignSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, design.DefaultDesignSettings(), settings)

	settings.PrimaryGold = "#112233"
	require.NoError(t, st.SaveDesignSettings(ctx, settings))

	got, err := st.GetDesignSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#112233", got.PrimaryGold)
}

func TestElementProps(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	size := 48
	e := design.ElementSettings{ElementName: "Hero title", SelectorType: design.SelectorClass, CSSSelector: ".hero h1", IsActive: true}
	e.FontSize = &size
	e.Color = "#FFF"
	require.NoError(t, st.CreateElement(ctx, &e))

	got, err := st.GetElementBySelector(ctx, ".hero h1")
	require.NoError(t, err)
	require.NotNil(t, got.FontSize)
	assert.Equal(t, 48, *got.FontSize)
	assert.Nil(t, got.MarginTop)
	assert.Equal(t, "#FFF", got.Color)

	dup := design.ElementSettings{ElementName: "Again", SelectorType: design.SelectorClass, CSSSelector: ".hero h1"}
	assert.ErrorIs(t, st.CreateElement(ctx, &dup), ErrDuplicate)

	existing, created, err := st.GetOrCreateElement(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, e.ID, existing.ID)
}

func TestUsers(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	has, err := st.HasSuperuser(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	taken := testutil.CreateTestUser(t, db, "New.User@example.com", true)

	has, err = st.HasSuperuser(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	byEmail, err := st.GetUserByEmail(ctx, "new.user@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, taken.ID, byEmail.ID)

	dupe, err := st.EmailTaken(ctx, "NEW.USER@example.com", 0)
	require.NoError(t, err)
	assert.True(t, dupe)
	dupe, err = st.EmailTaken(ctx, "new.user@example.com", taken.ID)
	require.NoError(t, err)
	assert.False(t, dupe)

	assert.Nil(t, byEmail.PasswordChangedAt)
	require.NoError(t, st.SetPassword(ctx, taken.ID, "new-hash"))
	changed, err := st.GetUser(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", changed.PasswordHash)
	require.NotNil(t, changed.PasswordChangedAt)
	assert.WithinDuration(t, time.Now(), *changed.PasswordChangedAt, time.Minute)

	username, err := st.UniqueUsername(ctx, "new.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.UsernameCandidate(auth.UsernameBase("new.user@example.com"), 1), username)
}

func TestCreateUserWithProfile(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	u := models.User{Username: "bau_ag", Email: "info@bau.example.com", IsActive: true}
	p := models.UserProfile{UserType: models.UserTypeCompany, CompanyName: "Bau AG"}
	require.NoError(t, st.CreateUserWithProfile(ctx, &u, &p))
	assert.Equal(t, u.ID, p.UserID)

	got, err := st.GetOrCreateProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Bau AG", got.CompanyName)

	// A second insert with the same username rolls back the whole pair
	again := models.User{Username: "bau_ag", Email: "other@example.com"}
	err = st.CreateUserWithProfile(ctx, &again, &models.UserProfile{UserType: models.UserTypeClient})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetOrCreateProfile_CreatesClient(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	u := models.User{Username: "plain", Email: "plain@example.com", IsActive: true}
	require.NoError(t, st.CreateUser(ctx, &u))

	p, err := st.GetOrCreateProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeClient, p.UserType)
	assert.NotZero(t, p.ID)
}
