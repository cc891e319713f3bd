// Package filestore persists the outbox collection as a single JSON file,
// serialized with a file lock so concurrent drainer and UI processes on
// one host do not interleave read-modify-write cycles.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

// fileName carries the schema version marker; a layout change bumps it
// and abandons the old file.
const fileName = "outbox.v1.json"

type Store struct {
	path string
	lock *flock.Flock
}

func New(dir string) *Store {
	path := filepath.Join(dir, fileName)
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *Store) Load(ctx context.Context) ([]outbox.Item, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, err
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []outbox.Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []outbox.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []outbox.Item{}
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, items []outbox.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
