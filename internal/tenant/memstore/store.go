// Package memstore is an in-memory tenant registry for tests and local
// development.
package memstore

import (
	"context"
	"sync"

	"github.com/m-ota618/shachoai-sub000/internal/tenant"
)

type Store struct {
	mu      sync.RWMutex
	records []tenant.Record
}

func New(records ...tenant.Record) *Store {
	return &Store{records: records}
}

func (s *Store) Add(rec tenant.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *Store) ByID(_ context.Context, id string) (*tenant.Record, error) {
	return s.find(func(r tenant.Record) bool { return r.OrgID == id }, id)
}

func (s *Store) BySlug(_ context.Context, slug string) (*tenant.Record, error) {
	return s.find(func(r tenant.Record) bool { return r.Slug == slug }, slug)
}

func (s *Store) ByDomain(_ context.Context, domain string) (*tenant.Record, error) {
	return s.find(func(r tenant.Record) bool { return r.Domain == domain }, domain)
}

func (s *Store) ByEmailDomain(_ context.Context, emailDomain string) (*tenant.Record, error) {
	return s.find(func(r tenant.Record) bool { return r.EmailDomain == emailDomain }, emailDomain)
}

func (s *Store) find(match func(tenant.Record) bool, key string) (*tenant.Record, error) {
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if match(s.records[i]) {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}
