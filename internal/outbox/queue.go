// Package outbox implements a durable queue of pending upstream writes
// with at-least-once delivery, exponential backoff on failure and a
// subscription mechanism for pending-count consumers.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/m-ota618/shachoai-sub000/internal/locker"
)

// Store persists the whole item collection as one unit. Implementations
// must return an empty slice, not an error, when nothing was stored yet.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Deliverer performs the upstream confirmation calls. A false result or an
// error both count as delivery failure; an error wrapping ErrPermanent
// dead-letters the item instead of backing it off. ConfirmComplete receives
// the answer payload captured at enqueue time; it may be nil.
type Deliverer interface {
	ConfirmComplete(ctx context.Context, row int, payload *ItemPayload) (bool, error)
	ConfirmNoChange(ctx context.Context, row int) (bool, error)
}

// Listener receives the full item list after every mutation.
type Listener func(items []Item)

// Result aggregates one drain pass. Processed = Succeeded + Failed.
type Result struct {
	Processed int
	Succeeded int
	Failed    int
}

// Queue is the outbox. All mutations load, modify and store the whole
// collection; drains are serialized by the guard.
type Queue struct {
	store       Store
	deliverer   Deliverer
	clock       Clock
	guard       locker.Locker
	maxAttempts int
	logger      *slog.Logger

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(q *Queue) { q.clock = clock }
}

// WithGuard replaces the in-process drain guard, e.g. with a distributed
// lock when several drainers share one store.
func WithGuard(guard locker.Locker) Option {
	return func(q *Queue) { q.guard = guard }
}

// WithMaxAttempts dead-letters items after n failed deliveries. Zero, the
// default, retries forever.
func WithMaxAttempts(n int) Option {
	return func(q *Queue) { q.maxAttempts = n }
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) { q.logger = logger }
}

func NewQueue(store Store, deliverer Deliverer, opts ...Option) *Queue {
	q := &Queue{
		store:     store,
		deliverer: deliverer,
		clock:     SystemClock{},
		guard:     locker.NewProcess(),
		logger:    slog.With("component", "outbox"),
		listeners: map[int]Listener{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue validates the operation, assigns an id and timestamps and
// appends it to the persisted collection.
func (q *Queue) Enqueue(ctx context.Context, op Op) (Item, error) {
	if err := op.validate(); err != nil {
		return Item{}, err
	}

	items, err := q.store.Load(ctx)
	if err != nil {
		return Item{}, err
	}

	now := q.clock.Now().UnixMilli()
	item := Item{
		ID:        uuid.NewString(),
		Type:      op.Type,
		Row:       op.Row,
		Payload:   op.Payload,
		TryCount:  0,
		NextAt:    now,
		CreatedAt: now,
	}

	items = append(items, item)
	if err := q.store.Save(ctx, items); err != nil {
		return Item{}, err
	}

	q.notify(items)
	return item, nil
}

// GetAll returns every persisted item in insertion order.
func (q *Queue) GetAll(ctx context.Context) ([]Item, error) {
	return q.store.Load(ctx)
}

// GetReady returns the items due for delivery, oldest enqueued first.
func (q *Queue) GetReady(ctx context.Context) ([]Item, error) {
	items, err := q.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now().UnixMilli()
	ready := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Dead && item.NextAt <= now {
			ready = append(ready, item)
		}
	}
	return ready, nil
}

// GetDead returns dead-lettered items awaiting operator attention.
func (q *Queue) GetDead(ctx context.Context) ([]Item, error) {
	items, err := q.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	dead := make([]Item, 0)
	for _, item := range items {
		if item.Dead {
			dead = append(dead, item)
		}
	}
	return dead, nil
}

// Pending returns the current queue size.
func (q *Queue) Pending(ctx context.Context) (int, error) {
	items, err := q.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Remove deletes the item with the given id. Removing an unknown id is
// not an error; the collection is persisted and subscribers are notified
// either way.
func (q *Queue) Remove(ctx context.Context, id string) error {
	items, err := q.store.Load(ctx)
	if err != nil {
		return err
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	if err := q.store.Save(ctx, kept); err != nil {
		return err
	}

	q.notify(kept)
	return nil
}

// MarkBackoff records a failed delivery: TryCount is incremented and
// NextAt pushed out by the backoff schedule. When a max-attempts limit is
// configured and reached, the item is dead-lettered instead.
func (q *Queue) MarkBackoff(ctx context.Context, id string) error {
	items, err := q.store.Load(ctx)
	if err != nil {
		return err
	}

	now := q.clock.Now().UnixMilli()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i].TryCount++
		items[i].NextAt = now + backoffDelay(items[i].TryCount).Milliseconds()
		if q.maxAttempts > 0 && items[i].TryCount >= q.maxAttempts {
			items[i].Dead = true
		}
		break
	}

	if err := q.store.Save(ctx, items); err != nil {
		return err
	}

	q.notify(items)
	return nil
}

// markDead dead-letters an item after a permanent delivery failure.
func (q *Queue) markDead(ctx context.Context, id string) error {
	items, err := q.store.Load(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID == id {
			items[i].TryCount++
			items[i].Dead = true
			break
		}
	}

	if err := q.store.Save(ctx, items); err != nil {
		return err
	}

	q.notify(items)
	return nil
}

// Clear drops every item, dead or pending.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.store.Save(ctx, []Item{}); err != nil {
		return err
	}
	q.notify([]Item{})
	return nil
}

// Subscribe registers a listener that receives the current item list
// immediately and again after every mutation. The returned function
// unsubscribes it.
func (q *Queue) Subscribe(ctx context.Context, listener Listener) (func(), error) {
	items, err := q.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = listener
	q.mu.Unlock()

	q.invoke(listener, items)

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}, nil
}

// SubmitReady attempts delivery of every due item, strictly in insertion
// order. A drain started while another is running is a no-op returning
// zero counts. Confirmed deliveries are removed; failures are backed off,
// or dead-lettered when the failure is permanent.
func (q *Queue) SubmitReady(ctx context.Context) (Result, error) {
	acquired, err := q.guard.TryLock()
	if err != nil {
		return Result{}, err
	}
	if !acquired {
		return Result{}, nil
	}
	defer func() {
		if _, err := q.guard.Unlock(); err != nil {
			q.logger.Warn("failed to release drain guard", "err", err)
		}
	}()

	ready, err := q.GetReady(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, item := range ready {
		res.Processed++

		ok, deliverErr := q.deliver(ctx, item)
		if ok && deliverErr == nil {
			if err := q.Remove(ctx, item.ID); err != nil {
				return res, err
			}
			res.Succeeded++
			continue
		}

		res.Failed++
		logger := q.logger.With("item", item.ID, "type", string(item.Type), "row", item.Row)
		if deliverErr != nil && errors.Is(deliverErr, ErrPermanent) {
			logger.Error("permanent delivery failure, dead-lettering", "err", deliverErr)
			if err := q.markDead(ctx, item.ID); err != nil {
				return res, err
			}
			continue
		}

		if deliverErr != nil {
			logger.Warn("delivery failed, backing off", "err", deliverErr)
		} else {
			logger.Warn("upstream did not confirm, backing off")
		}
		if err := q.MarkBackoff(ctx, item.ID); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (q *Queue) deliver(ctx context.Context, item Item) (bool, error) {
	switch item.Type {
	case OpComplete:
		return q.deliverer.ConfirmComplete(ctx, item.Row, item.Payload)
	case OpNoChange:
		return q.deliverer.ConfirmNoChange(ctx, item.Row)
	default:
		return false, fmt.Errorf("%w: %q", ErrPermanent, item.Type)
	}
}

func (q *Queue) notify(items []Item) {
	q.mu.Lock()
	listeners := make([]Listener, 0, len(q.listeners))
	for _, l := range q.listeners {
		listeners = append(listeners, l)
	}
	q.mu.Unlock()

	for _, l := range listeners {
		q.invoke(l, items)
	}
}

// invoke shields the queue from misbehaving subscribers.
func (q *Queue) invoke(listener Listener, items []Item) {
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Warn("outbox listener panic", "panic", rec)
		}
	}()

	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	listener(snapshot)
}
