package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

const (
	defaultUpstreamTimeout = 25 * time.Second

	// maxUpstreamBytes bounds how much of an upstream response is
	// buffered for translation.
	maxUpstreamBytes = 4 << 20
)

// UpstreamResponse is the translated reply sent back to the caller.
type UpstreamResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder delivers a validated request to a tenant's Apps Script
// endpoint as a form-encoded POST and normalizes the reply.
type Forwarder struct {
	httpClient *http.Client
	env        string
}

func NewForwarder(env string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	return &Forwarder{
		httpClient: &http.Client{Timeout: timeout},
		env:        env,
	}
}

// Forward posts the action to the tenant's endpoint. A transport failure
// is returned as an error; everything the upstream answered, including
// its error envelopes, comes back as an UpstreamResponse.
func (f *Forwarder) Forward(ctx context.Context, rec *tenant.Record, action, traceID string, payload json.RawMessage) (*UpstreamResponse, error) {
	form := url.Values{}
	form.Set("action", action)
	form.Set("token", rec.GASToken)
	form.Set("trace", traceID)
	form.Set("org", rec.OrgID)
	if f.env != "" {
		form.Set("env", f.env)
	}
	if len(payload) > 0 {
		form.Set("payload", string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rec.GASEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay: forwarding to %s: %w", rec.GASEndpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBytes))
	if err != nil {
		return nil, fmt.Errorf("relay: reading upstream response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if status, isError := translateEnvelope(body); isError {
			return &UpstreamResponse{
				Status:      status,
				ContentType: contentType,
				Body:        body,
			}, nil
		}
	}

	return &UpstreamResponse{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// translateEnvelope recognizes the upstream's {ok:false, error:<code>}
// failure shape and maps the code to an HTTP status.
func translateEnvelope(body []byte) (int, bool) {
	var envelope struct {
		OK    *bool  `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, false
	}
	if envelope.OK == nil || *envelope.OK {
		return 0, false
	}
	return mapUpstreamError(envelope.Error), true
}
