// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/models"
	"github.com/danielhkuo/bausite/store"
)

const dateLayout = "2006-01-02"

// errInvalidUpload marks a multipart body that could not be read
var errInvalidUpload = errors.New("invalid upload")

// pathID parses the {id} wildcard, answering 404 itself when it is not a number
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// storeError maps store sentinels onto responses. Anything unexpected is
// logged and reported as a 500.
func storeError(w http.ResponseWriter, logger *zap.Logger, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, store.ErrLimitReached):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("store operation failed", zap.String("entity", what), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicate)
}

func validEmail(s string) bool {
	if !strings.Contains(s, "@") {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// parseDate reads a YYYY-MM-DD query value; invalid input is ignored
func parseDate(s string) *time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// queryInt reads a non-negative integer query value, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func formInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	return n
}

// upload is one image read from a multipart form
type upload struct {
	contentType string
	filename    string
	data        []byte
}

// readUpload parses a multipart body and returns the file in field. A
// missing or empty file yields nil: the stored image stays unchanged.
func readUpload(r *http.Request, field string, maxBytes int64) (*upload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, r.ParseForm()
		}
		return nil, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", errInvalidUpload, maxBytes)
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType, filename := media.NormalizeUpload(header.Header.Get("Content-Type"), header.Filename)
	return &upload{contentType: contentType, filename: filename, data: data}, nil
}

// save writes the upload under the image key of model/id
func (u *upload) save(ctx context.Context, objects media.Store, model string, id int64) error {
	return objects.Put(ctx, media.Object{
		Key:         media.Key(model, id),
		ContentType: u.contentType,
		Data:        u.data,
	})
}

// uploadError answers a failed readUpload
func uploadError(w http.ResponseWriter, err error) {
	middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
}

// imageURL returns the public URL of a row's image, or "" when it has none
func imageURL(model string, id int64, contentType string) string {
	if contentType == "" {
		return ""
	}
	return media.URL(model, id)
}

func withHeroURLs(items []models.HeroImage) []models.HeroImage {
	for i := range items {
		items[i].ImageURL = imageURL(media.ModelHeroImage, items[i].ID, items[i].ImageType)
	}
	return items
}

func withServiceURLs(items []models.Service) []models.Service {
	for i := range items {
		items[i].ImageURL = imageURL(media.ModelService, items[i].ID, items[i].ImageType)
	}
	return items
}

func withPortfolioURLs(items []models.PortfolioProject) []models.PortfolioProject {
	for i := range items {
		items[i].ImageURL = imageURL(media.ModelProject, items[i].ID, items[i].ImageType)
	}
	return items
}

func withAvatarURL(p models.UserProfile) models.UserProfile {
	p.AvatarURL = imageURL(media.ModelUserProfile, p.ID, p.AvatarType)
	return p
}

func withLogoURL(s models.SiteSettings) models.SiteSettings {
	s.LogoURL = imageURL(media.ModelSiteSettings, 1, s.LogoType)
	return s
}

// currentUser returns the user attached by the auth middleware
func currentUser(r *http.Request) models.User {
	user, _ := middleware.UserFromContext(r.Context())
	return user
}

// lang picks the taxonomy language from ?lang= or Accept-Language
func lang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" {
		return strings.ToLower(l)
	}
	accept := r.Header.Get("Accept-Language")
	if len(accept) >= 2 {
		return strings.ToLower(accept[:2])
	}
	return ""
}
