// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/bausite/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Event names sent in the webhook payload
const (
	EventRequestSubmitted = "request.submitted"
	EventSupportSubmitted = "support.submitted"
)

const DefaultTimeout = 5 * time.Second

// Notifier is told about new site submissions after they are stored.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req models.Request) error
	SupportSubmitted(ctx context.Context, cr models.ContactRequest) error
}

// Payload is the JSON body posted to the webhook
type Payload struct {
	Event         string            `json:"event"`
	ID            int64             `json:"id"`
	DisplayNumber string            `json:"display_number,omitempty"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Message       string            `json:"message,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	CategoryID    *int64            `json:"category_id,omitempty"`
	SubcategoryID *int64            `json:"subcategory_id,omitempty"`
	ExtraAnswers  map[string]string `json:"extra_answers,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Webhook posts submissions to a single URL
type Webhook struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "bausite-webhook")
	return &Webhook{client: client, url: url, logger: logger}
}

func (w *Webhook) RequestSubmitted(ctx context.Context, req models.Request) error {
	return w.post(ctx, Payload{
		Event:         EventRequestSubmitted,
		ID:            req.ID,
		DisplayNumber: req.DisplayNumber(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Message:       req.Message,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		ExtraAnswers:  req.ExtraAnswers,
		CreatedAt:     req.CreatedAt,
	})
}

func (w *Webhook) SupportSubmitted(ctx context.Context, cr models.ContactRequest) error {
	return w.post(ctx, Payload{
		Event:     EventSupportSubmitted,
		ID:        cr.ID,
		Name:      cr.Name,
		Email:     cr.Email,
		Phone:     cr.Phone,
		Message:   cr.Message,
		Reason:    cr.Reason,
		CreatedAt: cr.CreatedAt,
	})
}

func (w *Webhook) post(ctx context.Context, p Payload) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(p).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	w.logger.Debug("webhook delivered",
		zap.String("event", p.Event),
		zap.Int64("id", p.ID),
		zap.Int("status_code", resp.StatusCode()),
	)
	return nil
}

// Nop discards every notification
type Nop struct{}

func (Nop) RequestSubmitted(context.Context, models.Request) error { return nil }

func (Nop) SupportSubmitted(context.Context, models.ContactRequest) error { return nil }

// New returns a webhook notifier for url, or Nop when url is empty.
func New(url string, logger *zap.Logger) Notifier {
	if url == "" {
		return Nop{}
	}
	return NewWebhook(url, DefaultTimeout, logger)
}
