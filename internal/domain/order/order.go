package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPending is the status every order is created with.
const StatusPending = "pending"

// Item is an immutable snapshot of a catalog product as it was when the order
// was placed, including the variant the customer picked.
type Item struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	Category      string
	Image         string
	SelectedColor string
	SelectedSize  string
}

// Submission is a checkout payload as received from the client, before
// validation.
type Submission struct {
	Address string
	Phone   string
	Note    *string
	Items   []Item
	Total   string
}

// Draft is a validated order ready to be inserted. The store turns it into an
// Order by assigning ID, Status and CreatedAt.
type Draft struct {
	Address string
	Phone   string
	Note    *string
	Items   []Item
	Total   Total
}

// Order is a persisted customer order.
type Order struct {
	ID        int64
	Address   string
	Phone     string
	Note      *string
	Items     []Item
	Total     Total
	Status    string
	CreatedAt time.Time
}

// FromDraft builds the stored form of d. Stores call it once they have
// assigned an id and a creation time.
func FromDraft(id int64, d Draft, createdAt time.Time) Order {
	items := make([]Item, len(d.Items))
	copy(items, d.Items)
	return Order{
		ID:        id,
		Address:   d.Address,
		Phone:     d.Phone,
		Note:      d.Note,
		Items:     items,
		Total:     d.Total,
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
}

// Repository defines persistence operations for orders.
//
// Create must assign strictly increasing ids and never expose a partially
// written order. List returns orders newest first.
type Repository interface {
	Create(ctx context.Context, d Draft) (*Order, error)
	List(ctx context.Context) ([]Order, error)
}
