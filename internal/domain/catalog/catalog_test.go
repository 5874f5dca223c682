package catalog

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	products := c.List()
	require.Len(t, products, 5)

	for i, p := range products {
		assert.Equal(t, int64(i+1), p.ID)
		assert.True(t, p.Price.Equal(decimal.RequireFromString("0.1")), p.Name)
		assert.True(t, p.HasColor(p.DefaultColor), p.Name)
		if p.Locked {
			assert.Empty(t, p.Sizes, p.Name)
		} else {
			assert.Equal(t, Sizes, p.Sizes, p.Name)
		}
	}
	assert.Equal(t, []int64{1}, c.Locked())
}

func TestProduct_ImageFor(t *testing.T) {
	c := Default()
	tests := []struct {
		id    int64
		color string
		want  string
	}{
		{id: 1, color: "Burgundy", want: "/products/burgundy-parapluie.png"},
		{id: 1, color: "Gray", want: "/products/gray-parapluie.png"},
		{id: 2, color: "Gray", want: "/products/gray-cardigan.png"},
		{id: 2, color: "Dark Gray", want: "/products/dark-gray-cardigan.png"},
		{id: 3, color: "Dark Blue", want: "/products/dark-pants.png"},
		{id: 5, color: "Brown/White", want: "/products/striped-sweater.png"},
		{id: 5, color: "", want: "/products/striped-sweater.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p, err := c.Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.ImageFor(tt.color))
		})
	}
}

func TestProduct_Snapshot(t *testing.T) {
	p, err := Default().Get(2)
	require.NoError(t, err)

	it := p.Snapshot("Cream", "M")
	assert.Equal(t, int64(2), it.ID)
	assert.Equal(t, "Cardigan Boutons", it.Name)
	assert.Equal(t, "Pull&Bear", it.Category)
	assert.Equal(t, "/products/cream-cardigan.png", it.Image)
	assert.Equal(t, "Cream", it.SelectedColor)
	assert.Equal(t, "M", it.SelectedSize)
}

func TestCatalog_Get(t *testing.T) {
	_, err := Default().Get(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_ListIsACopy(t *testing.T) {
	c := Default()
	list := c.List()
	list[0].Name = "changed"

	p, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Parapluie", p.Name)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New([]Product{{ID: 1}, {ID: 1}})
	require.Error(t, err)

	_, err = New([]Product{{ID: 1, Colors: []string{"Red"}, DefaultColor: "Blue"}})
	require.Error(t, err)
}

func TestProduct_Encode(t *testing.T) {
	p, err := Default().Get(4)
	require.NoError(t, err)

	e := &jx.Encoder{}
	p.Encode(e)

	assert.JSONEq(t, `{
		"id": 4,
		"name": "Jeans Flare",
		"price": 0.1,
		"category": "Pull&Bear",
		"image": "/products/black-jeans.png",
		"colors": ["Black"],
		"defaultColor": "Black",
		"colorImages": {"Black": "/products/black-jeans.png"},
		"sizes": ["XS", "S", "M", "L", "XL"],
		"locked": false
	}`, e.String())
}
