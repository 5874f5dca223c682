// Package storagetest holds the behavioural contract every order store must
// satisfy. Backends run it from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

// Factory returns an empty store. Each call must return a store whose first
// order gets id 1.
type Factory func(t *testing.T) order.Repository

// SampleDraft returns the draft from the canonical checkout scenario: a single
// umbrella at 0.10 DH.
func SampleDraft() order.Draft {
	return order.Draft{
		Address: "12 Rue X",
		Phone:   "0612345678",
		Items: []order.Item{{
			ID:            1,
			Name:          "Parapluie",
			Price:         decimal.RequireFromString("0.1"),
			Category:      "Mumuso",
			Image:         "/p.png",
			SelectedColor: "Gray",
		}},
		Total: order.Total{Amount: decimal.RequireFromString("0.10"), Currency: "DH"},
	}
}

// Run executes the store contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyList", func(t *testing.T) {
		s := newStore(t)

		orders, err := s.List(context.Background())
		require.NoError(t, err)
		require.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	t.Run("CreateReturnsStoredOrder", func(t *testing.T) {
		s := newStore(t)
		d := SampleDraft()

		o, err := s.Create(context.Background(), d)
		require.NoError(t, err)

		assert.Equal(t, int64(1), o.ID)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, d.Address, o.Address)
		assert.Equal(t, d.Phone, o.Phone)
		assert.Nil(t, o.Note)
		assert.False(t, o.CreatedAt.IsZero())
		assert.Equal(t, "0.10 DH", o.Total.String())
		AssertItemsEqual(t, d.Items, o.Items)
	})

	t.Run("NoteAbsentDistinctFromEmpty", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		withEmpty := SampleDraft()
		withEmpty.Note = pointer.To("")
		withText := SampleDraft()
		withText.Note = pointer.To("ring twice")

		_, err := s.Create(ctx, SampleDraft())
		require.NoError(t, err)
		_, err = s.Create(ctx, withEmpty)
		require.NoError(t, err)
		_, err = s.Create(ctx, withText)
		require.NoError(t, err)

		orders, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 3)

		byID := make(map[int64]order.Order, len(orders))
		for _, o := range orders {
			byID[o.ID] = o
		}
		assert.Nil(t, byID[1].Note)
		require.NotNil(t, byID[2].Note)
		assert.Equal(t, "", *byID[2].Note)
		require.NotNil(t, byID[3].Note)
		assert.Equal(t, "ring twice", *byID[3].Note)
	})

	t.Run("IDsStrictlyIncrease", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var last int64
		for range 5 {
			o, err := s.Create(ctx, SampleDraft())
			require.NoError(t, err)
			assert.Greater(t, o.ID, last)
			last = o.ID
		}
	})

	t.Run("IdenticalDraftsCreateDistinctOrders", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Create(ctx, SampleDraft())
		require.NoError(t, err)
		second, err := s.Create(ctx, SampleDraft())
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)

		orders, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Create(ctx, SampleDraft())
		require.NoError(t, err)

		d := SampleDraft()
		d.Address = "7 Avenue Y"
		second, err := s.Create(ctx, d)
		require.NoError(t, err)

		orders, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		AssertSortedNewestFirst(t, orders)
	})

	t.Run("ConcurrentCreate", func(t *testing.T) {
		s := newStore(t)
		const n = 20

		ids := make([]int64, n)
		g, ctx := errgroup.WithContext(context.Background())
		for i := range n {
			g.Go(func() error {
				o, err := s.Create(ctx, SampleDraft())
				if err != nil {
					return err
				}
				ids[i] = o.ID
				return nil
			})
		}
		require.NoError(t, g.Wait())

		seen := make(map[int64]bool, n)
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
			assert.GreaterOrEqual(t, id, int64(1))
			assert.LessOrEqual(t, id, int64(n))
		}

		orders, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, orders, n)
		AssertSortedNewestFirst(t, orders)
		for i := 1; i < len(orders); i++ {
			assert.Greater(t, orders[i-1].ID, orders[i].ID,
				"newest-first listing must also be descending by id")
		}
	})
}

// AssertItemsEqual compares item snapshots field by field, using decimal
// equality for prices.
func AssertItemsEqual(t *testing.T, want, got []order.Item) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID, "item %d id", i)
		assert.Equal(t, w.Name, g.Name, "item %d name", i)
		assert.True(t, w.Price.Equal(g.Price), "item %d price: want %s, got %s", i, w.Price, g.Price)
		assert.Equal(t, w.Category, g.Category, "item %d category", i)
		assert.Equal(t, w.Image, g.Image, "item %d image", i)
		assert.Equal(t, w.SelectedColor, g.SelectedColor, "item %d color", i)
		assert.Equal(t, w.SelectedSize, g.SelectedSize, "item %d size", i)
	}
}

// AssertSortedNewestFirst checks that CreatedAt never increases along orders.
func AssertSortedNewestFirst(t *testing.T, orders []order.Order) {
	t.Helper()

	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt),
			"order %d created after order %d", orders[i].ID, orders[i-1].ID)
	}
}
