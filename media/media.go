// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("media object not found")

// Model names accepted in image URLs
const (
	ModelSiteSettings = "sitesettings"
	ModelHeroImage    = "herocarouselimage"
	ModelService      = "service"
	ModelProject      = "project"
	ModelUserProfile  = "userprofile"
)

var models = map[string]bool{
	ModelSiteSettings: true,
	ModelHeroImage:    true,
	ModelService:      true,
	ModelProject:      true,
	ModelUserProfile:  true,
}

// MaxNameLength caps stored upload file names.
const MaxNameLength = 255

// DefaultContentType is used when an upload or stored object has no usable type.
const DefaultContentType = "application/octet-stream"

// Object is a stored image
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store keeps image bytes by key
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// ValidModel reports whether model may appear in an image URL
func ValidModel(model string) bool {
	return models[model]
}

// Key is the storage key for the image of a row
func Key(model string, id int64) string {
	return model + "/" + strconv.FormatInt(id, 10)
}

// URL is the public path serving the image of a row
func URL(model string, id int64) string {
	return "/dbimg/" + Key(model, id)
}

// NormalizeUpload coerces non-image content types to image/jpeg and trims
// the file name to MaxNameLength characters.
func NormalizeUpload(contentType, filename string) (string, string) {
	if !strings.Contains(contentType, "image") {
		contentType = "image/jpeg"
	}
	if r := []rune(filename); len(r) > MaxNameLength {
		filename = string(r[:MaxNameLength])
	}
	return contentType, filename
}

// Config selects and configures a backend
type Config struct {
	Driver string
	S3     S3Config
	DB     *sql.DB
}

// New opens the configured backend
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "db":
		if cfg.DB == nil {
			return nil, errors.New("db media driver needs a database")
		}
		return NewSQLStore(cfg.DB), nil
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported media driver %q", cfg.Driver)
}

// MemoryStore keeps objects in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, obj Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	obj.Data = data
	m.objects[obj.Key] = obj
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}
