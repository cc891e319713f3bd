// Package pgstore resolves tenants from the Postgres registry (the same
// database the auth layer lives in).
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

// Optional hint columns are nullable in the registry.
const columns = "org_id, COALESCE(slug, ''), COALESCE(custom_domain, ''), COALESCE(email_domain, ''), gas_endpoint, gas_token"

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	// The relay only runs point lookups; keep the pool small.
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ByID(ctx context.Context, id string) (*tenant.Record, error) {
	return s.lookup(ctx, "SELECT "+columns+" FROM orgs WHERE org_id = $1", id)
}

func (s *Store) BySlug(ctx context.Context, slug string) (*tenant.Record, error) {
	return s.lookup(ctx, "SELECT "+columns+" FROM orgs WHERE slug = $1", slug)
}

func (s *Store) ByDomain(ctx context.Context, domain string) (*tenant.Record, error) {
	return s.lookup(ctx, "SELECT "+columns+" FROM orgs WHERE custom_domain = $1", domain)
}

func (s *Store) ByEmailDomain(ctx context.Context, emailDomain string) (*tenant.Record, error) {
	return s.lookup(ctx, "SELECT "+columns+" FROM orgs WHERE email_domain = $1", emailDomain)
}

func (s *Store) lookup(ctx context.Context, query string, arg string) (*tenant.Record, error) {
	if arg == "" {
		return nil, nil
	}

	var rec tenant.Record
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&rec.OrgID,
		&rec.Slug,
		&rec.Domain,
		&rec.EmailDomain,
		&rec.GASEndpoint,
		&rec.GASToken,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
