//go:build unit

package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

func newSeededStore() *Store {
	return New(
		tenant.Record{
			OrgID:       "org-alpha",
			Slug:        "alpha",
			Domain:      "alpha.example.com",
			EmailDomain: "alpha.co.jp",
			GASEndpoint: "https://script.google.com/macros/s/alpha/exec",
		},
		tenant.Record{
			OrgID:       "org-beta",
			Slug:        "beta",
			Domain:      "beta.example.com",
			EmailDomain: "beta.co.jp",
			GASEndpoint: "https://script.google.com/macros/s/beta/exec",
		},
	)
}

func TestLookups_MatchByEachHint(t *testing.T) {
	t.Parallel()

	store := newSeededStore()
	ctx := context.TODO()

	cases := []struct {
		name   string
		lookup func() (*tenant.Record, error)
	}{
		{"by id", func() (*tenant.Record, error) { return store.ByID(ctx, "org-beta") }},
		{"by slug", func() (*tenant.Record, error) { return store.BySlug(ctx, "beta") }},
		{"by domain", func() (*tenant.Record, error) { return store.ByDomain(ctx, "beta.example.com") }},
		{"by email domain", func() (*tenant.Record, error) { return store.ByEmailDomain(ctx, "beta.co.jp") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, err := tc.lookup()
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, "org-beta", rec.OrgID)
		})
	}
}

func TestLookups_MissAndEmptyKeyReturnNil(t *testing.T) {
	t.Parallel()

	store := newSeededStore()

	rec, err := store.BySlug(context.TODO(), "gamma")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.ByID(context.TODO(), "")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAdd_RegistersNewTenant(t *testing.T) {
	t.Parallel()

	store := New()
	store.Add(tenant.Record{OrgID: "org-gamma", Slug: "gamma"})

	rec, err := store.BySlug(context.TODO(), "gamma")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "org-gamma", rec.OrgID)
}

func TestLookup_ReturnsCopyNotAlias(t *testing.T) {
	t.Parallel()

	store := newSeededStore()

	first, err := store.ByID(context.TODO(), "org-alpha")
	require.NoError(t, err)
	first.Slug = "mutated"

	second, err := store.ByID(context.TODO(), "org-alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", second.Slug)
}
