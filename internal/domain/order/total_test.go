package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTotal(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0.10 DH", want: "0.10 DH"},
		{in: "0.1", want: "0.10 DH"},
		{in: "  12.5   EUR ", want: "12.50 EUR"},
		{in: "1.005 DH", want: "1.01 DH"},
		{in: "0 DH", want: "0.00 DH"},
		{in: "", wantErr: true},
		{in: "DH", wantErr: true},
		{in: "1 DH extra", wantErr: true},
		{in: "-1 DH", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTotal(tt.in, DefaultCurrency)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTotal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTotal_StringWithoutCurrency(t *testing.T) {
	assert.Equal(t, "3.00", Total{Amount: decimal.NewFromInt(3)}.String())
}

func TestSumItems(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i].Price = decimal.RequireFromString("0.1")
	}

	assert.Equal(t, "0.50 DH", TotalOf(items, DefaultCurrency).String())
	assert.True(t, SumItems(nil).IsZero())
}

func TestParseTotal_AmountOutOfRange(t *testing.T) {
	for _, in := range []string{
		"1e99999999 DH",
		"1e-999999999 DH",
		"1e13",
		"0.000000001 DH",
		"123456789012345678901 DH",
		strings.Repeat("9", 64) + " DH",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTotal(in, DefaultCurrency)
			require.ErrorIs(t, err, ErrAmountOutOfRange)
		})
	}
}

func TestCheckAmount(t *testing.T) {
	assert.NoError(t, CheckAmount(decimal.RequireFromString("0.1")))
	assert.NoError(t, CheckAmount(decimal.RequireFromString("1e12")))
	assert.NoError(t, CheckAmount(decimal.Zero))
	assert.ErrorIs(t, CheckAmount(decimal.New(1, 13)), ErrAmountOutOfRange)
	assert.ErrorIs(t, CheckAmount(decimal.New(1, -9)), ErrAmountOutOfRange)
	assert.ErrorIs(t, CheckAmount(decimal.New(1, 99999999)), ErrAmountOutOfRange)
}
