//go:build unit

package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
	"github.com/m-ota618/shachoai-sub000/internal/tenant/memstore"
)

func twoTenantStore() *memstore.Store {
	return memstore.New(
		tenant.Record{
			OrgID:       "org-alpha",
			Slug:        "alpha",
			Domain:      "qa.alpha.example",
			EmailDomain: "alpha.example",
			GASEndpoint: "https://script.example/alpha",
			GASToken:    "alpha-token",
		},
		tenant.Record{
			OrgID:       "org-beta",
			Slug:        "beta",
			Domain:      "qa.beta.example",
			EmailDomain: "beta.example",
			GASEndpoint: "https://script.example/beta",
			GASToken:    "beta-token",
		},
	)
}

func TestResolveTenant_IdHeaderOutranksSlugHeader(t *testing.T) {
	t.Parallel()

	chain := newResolverChain(twoTenantStore())

	rec, via, err := resolveTenant(context.TODO(), chain, Hints{
		TenantID:   "org-alpha",
		TenantSlug: "beta",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "org-alpha", rec.OrgID)
	assert.Equal(t, "header-id", via)
}

func TestResolveTenant_ChainOrder(t *testing.T) {
	t.Parallel()

	chain := newResolverChain(twoTenantStore())
	ctx := context.TODO()

	cases := []struct {
		name    string
		hints   Hints
		wantOrg string
		wantVia string
	}{
		{"slug header", Hints{TenantSlug: "beta"}, "org-beta", "header-slug"},
		{"path slug", Hints{PathSlug: "alpha"}, "org-alpha", "path-slug"},
		{"custom domain", Hints{Host: "qa.beta.example"}, "org-beta", "host"},
		{"email domain", Hints{EmailDomain: "alpha.example"}, "org-alpha", "email-domain"},
		{
			"slug header outranks host",
			Hints{TenantSlug: "alpha", Host: "qa.beta.example"},
			"org-alpha", "header-slug",
		},
		{
			"host outranks email domain",
			Hints{Host: "qa.beta.example", EmailDomain: "alpha.example"},
			"org-beta", "host",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, via, err := resolveTenant(ctx, chain, tc.hints)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, tc.wantOrg, rec.OrgID)
			assert.Equal(t, tc.wantVia, via)
		})
	}
}

func TestResolveTenant_NoHintsMatchingReturnsNil(t *testing.T) {
	t.Parallel()

	chain := newResolverChain(twoTenantStore())

	rec, _, err := resolveTenant(context.TODO(), chain, Hints{
		TenantSlug: "gamma",
		Host:       "unknown.example",
	})
	require.NoError(t, err)
	assert.Nil(t, rec)
}
