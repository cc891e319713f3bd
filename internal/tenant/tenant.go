// Package tenant defines the tenant registry consulted by the relay.
package tenant

import "context"

// Record describes one tenant and its upstream endpoint.
type Record struct {
	OrgID       string
	Slug        string
	Domain      string
	EmailDomain string
	GASEndpoint string
	GASToken    string
}

// Store looks up tenants by the hints a request may carry. A miss is
// (nil, nil); errors are reserved for infrastructure failures.
type Store interface {
	ByID(ctx context.Context, id string) (*Record, error)
	BySlug(ctx context.Context, slug string) (*Record, error)
	ByDomain(ctx context.Context, domain string) (*Record, error)
	ByEmailDomain(ctx context.Context, emailDomain string) (*Record, error)
}
