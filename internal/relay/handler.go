package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/m-ota618/shachoai-sub000/internal/metrics"
	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

const (
	headerTraceID     = "X-Trace-Id"
	headerTenantID    = "X-Tenant-Id"
	headerTenantSlug  = "X-Tenant-Slug"
	headerGASEndpoint = "X-GAS-Endpoint"
)

type request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type Handler struct {
	chain     []resolver
	auth      *Authenticator
	forwarder *Forwarder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewHandler(tenants tenant.Store, auth *Authenticator, forwarder *Forwarder, m *metrics.Metrics) *Handler {
	return &Handler{
		chain:     newResolverChain(tenants),
		auth:      auth,
		forwarder: forwarder,
		metrics:   m,
		logger:    slog.With("component", "relay"),
	}
}

// Handle processes one {action, payload} request: validate, resolve the
// tenant, forward, translate. The relay never retries; redelivery is the
// caller's concern.
func (h *Handler) Handle(c echo.Context) error {
	action := "unknown"
	start := time.Now()
	defer func() {
		if h.metrics == nil {
			return
		}
		h.metrics.RelayRequestsTotal.
			WithLabelValues(action, strconv.Itoa(c.Response().Status)).Inc()
		h.metrics.RelayRequestDuration.
			WithLabelValues(action).Observe(time.Since(start).Seconds())
	}()

	traceID := c.Request().Header.Get(headerTraceID)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	c.Response().Header().Set(headerTraceID, traceID)

	logger := h.logger.With("trace", traceID)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be a JSON object with an action"})
	}
	if !knownAction(req.Action) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
	action = req.Action

	payload := map[string]any{}
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload must be a JSON object"})
		}
	}
	if err := validatePayload(req.Action, payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	user := h.auth.Verify(c.Request())

	hints := Hints{
		TenantID:   c.Request().Header.Get(headerTenantID),
		TenantSlug: c.Request().Header.Get(headerTenantSlug),
		PathSlug:   pathSlug(c),
		Host:       requestHost(c.Request()),
	}
	if user != nil {
		hints.EmailDomain = user.EmailDomain
	}

	rec, via, err := resolveTenant(c.Request().Context(), h.chain, hints)
	if err != nil {
		logger.Error("tenant lookup failed", "resolver", via, "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "tenant lookup failed"})
	}
	if rec == nil {
		logger.Warn("tenant not found", "host", hints.Host)
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "tenant not found",
			"host":  hints.Host,
		})
	}

	c.Response().Header().Set(headerTenantID, rec.OrgID)
	c.Response().Header().Set(headerGASEndpoint, rec.GASEndpoint)

	up, err := h.forwarder.Forward(c.Request().Context(), rec, req.Action, traceID, req.Payload)
	if err != nil {
		logger.Error("upstream call failed", "org", rec.OrgID, "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream unreachable"})
	}

	logger.Info("forwarded",
		"action", req.Action,
		"org", rec.OrgID,
		"resolver", via,
		"status", up.Status,
	)

	contentType := up.ContentType
	if contentType == "" {
		contentType = echo.MIMETextPlain
	}
	return c.Blob(up.Status, contentType, up.Body)
}

// pathSlug extracts the first URL path segment, used as a tenant slug
// hint when present.
func pathSlug(c echo.Context) string {
	if slug := c.Param("slug"); slug != "" {
		return slug
	}
	trimmed := strings.Trim(c.Request().URL.Path, "/")
	if trimmed == "" {
		return ""
	}
	return strings.SplitN(trimmed, "/", 2)[0]
}
