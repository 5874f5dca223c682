package order

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the suffix used by the storefront when formatting totals.
const DefaultCurrency = "DH"

// Amounts outside these bounds are rejected before any arithmetic is done
// on them.
const (
	minAmountExponent = -8
	maxAmountExponent = 12
	maxAmountDigits   = 20
	maxAmountLength   = 40
)

var (
	// ErrInvalidTotal is returned when a total string cannot be parsed.
	ErrInvalidTotal = errors.New("invalid total")
	// ErrAmountOutOfRange is returned for amounts too large or too precise
	// to be a price.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// Total is an order amount with its currency code.
type Total struct {
	Amount   decimal.Decimal
	Currency string
}

// String formats the total the way the storefront displays it, e.g. "0.10 DH".
func (t Total) String() string {
	if t.Currency == "" {
		return t.Amount.StringFixed(2)
	}
	return t.Amount.StringFixed(2) + " " + t.Currency
}

// ParseTotal parses "<amount> [<currency>]". When the currency is omitted,
// fallbackCurrency is used.
func ParseTotal(s, fallbackCurrency string) (Total, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Total{}, errors.Wrapf(ErrInvalidTotal, "%q", s)
	}

	amount, err := ParseAmount(fields[0])
	if errors.Is(err, ErrAmountOutOfRange) {
		return Total{}, err
	}
	if err != nil {
		return Total{}, errors.Wrapf(ErrInvalidTotal, "%q", s)
	}
	if amount.IsNegative() {
		return Total{}, errors.Wrapf(ErrInvalidTotal, "negative amount %q", s)
	}

	currency := fallbackCurrency
	if len(fields) == 2 {
		currency = fields[1]
	}
	return Total{Amount: amount.Round(2), Currency: currency}, nil
}

// ParseAmount parses a decimal amount, rejecting values outside the range
// CheckAmount accepts.
func ParseAmount(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountLength {
		return decimal.Zero, errors.Wrapf(ErrAmountOutOfRange, "%d characters", len(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount reports whether d has a bounded exponent and digit count.
func CheckAmount(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return errors.Wrapf(ErrAmountOutOfRange, "exponent %d", exp)
	}
	if n := d.NumDigits(); n > maxAmountDigits {
		return errors.Wrapf(ErrAmountOutOfRange, "%d digits", n)
	}
	return nil
}

// SumItems adds up item prices, rounded to 2 decimal places.
func SumItems(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price)
	}
	return sum.Round(2)
}

// TotalOf returns the total of items in the given currency.
func TotalOf(items []Item, currency string) Total {
	return Total{Amount: SumItems(items), Currency: currency}
}
