package relay

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

// Hints are the tenant clues extracted from one request, in the order the
// chain consults them.
type Hints struct {
	TenantID    string
	TenantSlug  string
	PathSlug    string
	Host        string
	EmailDomain string
}

type resolver struct {
	name    string
	resolve func(ctx context.Context, h Hints) (*tenant.Record, error)
}

// newResolverChain builds the ordered first-match-wins lookup chain:
// explicit id header, explicit slug header, URL path slug, request host,
// authenticated email domain.
func newResolverChain(store tenant.Store) []resolver {
	return []resolver{
		{"header-id", func(ctx context.Context, h Hints) (*tenant.Record, error) {
			return store.ByID(ctx, h.TenantID)
		}},
		{"header-slug", func(ctx context.Context, h Hints) (*tenant.Record, error) {
			return store.BySlug(ctx, h.TenantSlug)
		}},
		{"path-slug", func(ctx context.Context, h Hints) (*tenant.Record, error) {
			return store.BySlug(ctx, h.PathSlug)
		}},
		{"host", func(ctx context.Context, h Hints) (*tenant.Record, error) {
			return store.ByDomain(ctx, h.Host)
		}},
		{"email-domain", func(ctx context.Context, h Hints) (*tenant.Record, error) {
			return store.ByEmailDomain(ctx, h.EmailDomain)
		}},
	}
}

// resolveTenant walks the chain and returns the first hit together with
// the name of the resolver that produced it.
func resolveTenant(ctx context.Context, chain []resolver, hints Hints) (*tenant.Record, string, error) {
	for _, r := range chain {
		rec, err := r.resolve(ctx, hints)
		if err != nil {
			return nil, r.name, err
		}
		if rec != nil {
			return rec, r.name, nil
		}
	}
	return nil, "", nil
}

// requestHost returns the effective host, preferring the reverse proxy's
// forwarded header and stripping any port.
func requestHost(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if idx := strings.Index(host, ","); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimSpace(host)
	if idx := strings.LastIndex(host, ":"); idx >= 0 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return host
}
