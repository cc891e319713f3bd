// Package relay implements the tenant-resolving gateway: it validates
// {action, payload} requests, resolves the calling tenant through a
// first-match-wins hint chain and forwards the call to that tenant's
// Apps Script endpoint.
package relay

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/m-ota618/shachoai-sub000/internal/metrics"
	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

// maxBodySize caps request bodies before any validation or tenant work.
const maxBodySize = "256K"

type Config struct {
	// AllowOrigins is the CORS allow-list.
	AllowOrigins []string
	// Env is an environment tag forwarded to the upstream.
	Env string
	// JWKSURL enables optional bearer verification when set.
	JWKSURL string
	// UpstreamTimeout bounds the forwarded call.
	UpstreamTimeout time.Duration
}

// NewEcho wires the middleware stack and routes.
func NewEcho(cfg Config, tenants tenant.Store, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			headerTraceID,
			headerTenantID,
			headerTenantSlug,
		},
		ExposeHeaders: []string{headerTraceID, headerTenantID, headerGASEndpoint},
		MaxAge:        300,
	}))
	e.Use(middleware.BodyLimit(maxBodySize))

	handler := NewHandler(
		tenants,
		NewAuthenticator(cfg.JWKSURL),
		NewForwarder(cfg.Env, cfg.UpstreamTimeout),
		m,
	)

	e.POST("/", handler.Handle)
	e.POST("/:slug", handler.Handle)

	return e
}
