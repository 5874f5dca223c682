// Package catalog holds the fixed storefront catalog.
package catalog

import (
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kitty-cart/internal/domain/order"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Sizes offered for every product that is not locked.
var Sizes = []string{"XS", "S", "M", "L", "XL"}

// Product is a catalog entry with its color and size variants.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category string
	Image    string
	Colors   []string
	// DefaultColor is preselected when the storefront loads.
	DefaultColor string
	// ColorImages maps a color to the image shown for it. Colors without an
	// entry use Image.
	ColorImages map[string]string
	Sizes       []string
	// Locked products are always selected and cannot be toggled off.
	Locked bool
}

// ImageFor returns the image for the given color variant.
func (p Product) ImageFor(color string) string {
	if img, ok := p.ColorImages[color]; ok {
		return img
	}
	return p.Image
}

// HasColor reports whether color is one of the product's variants.
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// HasSize reports whether size is offered for the product.
func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// Snapshot captures the product as an order item with the chosen variant.
// The item image follows the chosen color.
func (p Product) Snapshot(color, size string) order.Item {
	return order.Item{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Category:      p.Category,
		Image:         p.ImageFor(color),
		SelectedColor: color,
		SelectedSize:  size,
	}
}

// Catalog is an immutable, ordered set of products.
type Catalog struct {
	products []Product
	byID     map[int64]int
}

// New builds a Catalog. Product ids must be unique and every default color
// must be one of the product's colors.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[int64]int, len(products)),
	}
	for i, p := range c.products {
		if _, ok := c.byID[p.ID]; ok {
			return nil, errors.Errorf("duplicate product id %d", p.ID)
		}
		if p.DefaultColor != "" && !p.HasColor(p.DefaultColor) {
			return nil, errors.Errorf("product %d: default color %q is not offered", p.ID, p.DefaultColor)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// List returns every product in display order.
func (c *Catalog) List() []Product {
	return slices.Clone(c.products)
}

// Get returns the product with the given id.
func (c *Catalog) Get(id int64) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return c.products[i], nil
}

// Locked returns the ids of locked products.
func (c *Catalog) Locked() []int64 {
	var ids []int64
	for _, p := range c.products {
		if p.Locked {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
