// Package gasapi calls the relay gateway on behalf of the drainer. The
// relay resolves the tenant and forwards each call to its Apps Script
// endpoint; this client only interprets the boolean-ish confirmation
// results.
package gasapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

const (
	defaultTimeout = 10 * time.Second

	actionComplete = "complete"
	actionNoChange = "noChange"
)

// maxResponseBytes bounds how much of a confirmation response is read.
const maxResponseBytes = 64 << 10

type Config struct {
	// BaseURL is the relay endpoint, optionally including a tenant slug
	// path segment.
	BaseURL string
	// Token is an optional bearer token forwarded as-is.
	Token string
	// TenantID and TenantSlug are optional explicit tenant hints.
	TenantID   string
	TenantSlug string
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ConfirmComplete reports whether the upstream acknowledged publishing
// the answer in the given row. The answer payload captured at enqueue
// time is sent along when present.
func (c *Client) ConfirmComplete(ctx context.Context, row int, payload *outbox.ItemPayload) (bool, error) {
	fields := map[string]any{"row": row}
	if payload != nil {
		if payload.Answer != "" {
			fields["answer"] = payload.Answer
		}
		if payload.URL != "" {
			fields["url"] = payload.URL
		}
	}
	return c.confirm(ctx, actionComplete, fields)
}

// ConfirmNoChange reports whether the upstream acknowledged the
// no-change marker for the given row.
func (c *Client) ConfirmNoChange(ctx context.Context, row int) (bool, error) {
	return c.confirm(ctx, actionNoChange, map[string]any{"row": row})
}

func (c *Client) confirm(ctx context.Context, action string, fields map[string]any) (bool, error) {
	body, err := json.Marshal(map[string]any{
		"action":  action,
		"payload": fields,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if c.cfg.TenantID != "" {
		req.Header.Set("X-Tenant-Id", c.cfg.TenantID)
	}
	if c.cfg.TenantSlug != "" {
		req.Header.Set("X-Tenant-Slug", c.cfg.TenantSlug)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("gasapi: %s request failed: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("gasapi: reading %s response: %w", action, err)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return false, fmt.Errorf("gasapi: %s rejected with status %d: %w", action, resp.StatusCode, outbox.ErrPermanent)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("gasapi: %s returned status %d", action, resp.StatusCode)
	}

	return confirmed(respBody), nil
}

// confirmed interprets the upstream's loose success conventions: a bare
// "true", or a JSON object carrying ok/success true.
func confirmed(body []byte) bool {
	text := strings.TrimSpace(string(body))
	if text == "true" || text == `"true"` {
		return true
	}

	var envelope struct {
		OK      *bool `json:"ok"`
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	if envelope.OK != nil {
		return *envelope.OK
	}
	if envelope.Success != nil {
		return *envelope.Success
	}
	return false
}
