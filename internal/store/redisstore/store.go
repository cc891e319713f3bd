// Package redisstore persists the outbox collection as one JSON value
// under a single versioned key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

const key = "outbox:v1"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Load(ctx context.Context) ([]outbox.Item, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
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
	return s.client.Set(ctx, key, data, 0).Err()
}
