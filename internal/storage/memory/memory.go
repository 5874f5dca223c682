// Package memory implements a process-local order store. It is used when no
// durable backend is configured; orders are lost on restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

var _ order.Repository = (*Store)(nil)

// Store keeps orders in memory. It is safe for concurrent use.
type Store struct {
	now func() time.Time

	mu      sync.RWMutex
	orders  []order.Order
	nextID  int64
	lastRun time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store whose first order gets id 1.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		nextID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns the next id and the creation time, then appends the order.
// CreatedAt never goes backwards relative to previously created orders, even
// if the clock does.
func (s *Store) Create(_ context.Context, d order.Draft) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	if createdAt.Before(s.lastRun) {
		createdAt = s.lastRun
	}
	s.lastRun = createdAt

	o := order.FromDraft(s.nextID, d, createdAt)
	s.nextID++
	s.orders = append(s.orders, o)

	out := o
	out.Items = slices.Clone(o.Items)
	return &out, nil
}

// List returns a copy of all orders, newest first. Orders created at the same
// instant are ordered by descending id.
func (s *Store) List(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	out := make([]order.Order, len(s.orders))
	for i, o := range s.orders {
		o.Items = slices.Clone(o.Items)
		out[i] = o
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// Len returns the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
