// Package checkout coordinates the storefront checkout: product selection,
// variant choice, and submission of the resulting order.
package checkout

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kitty-cart/internal/domain/catalog"
	"github.com/xenking/kitty-cart/internal/domain/order"
)

var (
	// ErrLocked is returned when toggling a product that is always selected.
	ErrLocked = errors.New("product is locked")
	// ErrUnknownVariant is returned for a color or size the product lacks.
	ErrUnknownVariant = errors.New("unknown variant")
)

// Submitter places an order.
type Submitter interface {
	Submit(ctx context.Context, sub order.Submission) (*order.Order, error)
}

// Details are the customer fields collected by the checkout form.
type Details struct {
	Address string
	Phone   string
	Note    *string
}

// State is a snapshot of what the storefront shows.
type State struct {
	Selected     []int64
	Colors       map[int64]string
	Sizes        map[int64]string
	CheckoutOpen bool
	SuccessShown bool
	Submitting   bool
	// Notice is a dismissible error message from the last failed submission.
	Notice    string
	LastOrder *order.Order
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithCelebration sets a hook fired after a successful submission.
func WithCelebration(fn func(*order.Order)) FlowOption {
	return func(f *Flow) { f.celebrate = fn }
}

// WithCurrency sets the currency suffix of computed totals.
func WithCurrency(currency string) FlowOption {
	return func(f *Flow) { f.currency = currency }
}

// Flow holds the transient checkout state. It is safe for concurrent use.
type Flow struct {
	catalog   *catalog.Catalog
	submitter Submitter
	currency  string
	celebrate func(*order.Order)

	mu           sync.Mutex
	selected     map[int64]bool
	colors       map[int64]string
	sizes        map[int64]string
	checkoutOpen bool
	successShown bool
	submitting   bool
	notice       string
	last         *order.Order
}

// NewFlow returns a Flow with locked products selected and every product set
// to its default color.
func NewFlow(c *catalog.Catalog, s Submitter, opts ...FlowOption) *Flow {
	f := &Flow{
		catalog:   c,
		submitter: s,
		currency:  order.DefaultCurrency,
		celebrate: func(*order.Order) {},
		selected:  make(map[int64]bool),
		colors:    make(map[int64]string),
		sizes:     make(map[int64]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, p := range c.List() {
		if p.Locked {
			f.selected[p.ID] = true
		}
		if p.DefaultColor != "" {
			f.colors[p.ID] = p.DefaultColor
		}
	}
	return f
}

// Toggle flips the selection of a product and returns whether it is now
// selected. Locked products cannot be toggled.
func (f *Flow) Toggle(id int64) (bool, error) {
	p, err := f.catalog.Get(id)
	if err != nil {
		return false, err
	}
	if p.Locked {
		return true, errors.Wrapf(ErrLocked, "%s", p.Name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected[id] = !f.selected[id]
	return f.selected[id], nil
}

// SelectColor sets the chosen color of a product.
func (f *Flow) SelectColor(id int64, color string) error {
	p, err := f.catalog.Get(id)
	if err != nil {
		return err
	}
	if !p.HasColor(color) {
		return errors.Wrapf(ErrUnknownVariant, "%s has no color %q", p.Name, color)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors[id] = color
	return nil
}

// SelectSize sets the chosen size of a product.
func (f *Flow) SelectSize(id int64, size string) error {
	p, err := f.catalog.Get(id)
	if err != nil {
		return err
	}
	if !p.HasSize(size) {
		return errors.Wrapf(ErrUnknownVariant, "%s has no size %q", p.Name, size)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes[id] = size
	return nil
}

// OpenCheckout shows the checkout form.
func (f *Flow) OpenCheckout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutOpen = true
}

// CloseCheckout hides the checkout form.
func (f *Flow) CloseCheckout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutOpen = false
}

// DismissSuccess hides the success view.
func (f *Flow) DismissSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successShown = false
}

// DismissNotice clears the last error message.
func (f *Flow) DismissNotice() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = ""
}

// Cart returns the selected items with their chosen variants, in catalog
// order, and their total.
func (f *Flow) Cart() ([]order.Item, order.Total) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartLocked()
}

func (f *Flow) cartLocked() ([]order.Item, order.Total) {
	items := make([]order.Item, 0, len(f.selected))
	for _, p := range f.catalog.List() {
		if !f.selected[p.ID] {
			continue
		}
		items = append(items, p.Snapshot(f.colors[p.ID], f.sizes[p.ID]))
	}
	return items, order.TotalOf(items, f.currency)
}

// Submit computes the cart and places the order. On success the checkout
// closes and the success view shows. On failure the checkout stays open and
// the error message becomes the notice.
func (f *Flow) Submit(ctx context.Context, d Details) (*order.Order, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, errors.New("submission already in progress")
	}
	f.submitting = true
	items, total := f.cartLocked()
	f.mu.Unlock()

	lg := zctx.From(ctx)
	o, err := f.submitter.Submit(ctx, order.Submission{
		Address: d.Address,
		Phone:   d.Phone,
		Note:    d.Note,
		Items:   items,
		Total:   total.String(),
	})

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.notice = noticeFor(err)
		f.mu.Unlock()
		lg.Warn("Checkout failed", zap.Error(err))
		return nil, err
	}
	f.checkoutOpen = false
	f.successShown = true
	f.notice = ""
	f.last = o
	f.mu.Unlock()

	lg.Info("Checkout succeeded", zap.Int64("order_id", o.ID), zap.String("total", o.Total.String()))
	f.celebrate(o)
	return o, nil
}

// State returns a snapshot of the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	selected := make([]int64, 0, len(f.selected))
	for id, ok := range f.selected {
		if ok {
			selected = append(selected, id)
		}
	}
	slices.Sort(selected)

	return State{
		Selected:     selected,
		Colors:       maps.Clone(f.colors),
		Sizes:        maps.Clone(f.sizes),
		CheckoutOpen: f.checkoutOpen,
		SuccessShown: f.successShown,
		Submitting:   f.submitting,
		Notice:       f.notice,
		LastOrder:    f.last,
	}
}

func noticeFor(err error) string {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Message
	}
	return MsgCreateFailed
}
