package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/ogen-go/ogen/validate"
)

// Rules configures submission validation. The storefront's phone input has
// used several rules over time (at least 10 characters, at least 9, exactly
// 9 digits), so both phone bounds are configurable.
type Rules struct {
	AddressMinLength int
	PhoneMinLength   int
	// PhoneMaxLength of zero means unbounded.
	PhoneMaxLength int
	RequireItems   bool
	// Currency is assumed when a submitted total carries none.
	Currency string
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		AddressMinLength: 1,
		PhoneMinLength:   9,
		Currency:         DefaultCurrency,
	}
}

// Validator checks checkout submissions and turns them into drafts.
type Validator struct {
	rules   Rules
	address validate.String
	phone   validate.String
}

// NewValidator creates a Validator enforcing r.
func NewValidator(r Rules) *Validator {
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	v := &Validator{rules: r}
	if r.AddressMinLength > 0 {
		v.address.MinLength = r.AddressMinLength
		v.address.MinLengthSet = true
	}
	if r.PhoneMinLength > 0 {
		v.phone.MinLength = r.PhoneMinLength
		v.phone.MinLengthSet = true
	}
	if r.PhoneMaxLength > 0 {
		v.phone.MaxLength = r.PhoneMaxLength
		v.phone.MaxLengthSet = true
	}
	return v
}

// Rules returns the active validation rules.
func (v *Validator) Rules() Rules {
	return v.rules
}

// Validate checks s and returns the draft to insert. All field failures are
// collected into a single *ValidationError.
func (v *Validator) Validate(s Submission) (Draft, error) {
	var failures []validate.FieldError

	address := strings.TrimSpace(s.Address)
	if err := checkString(address, v.address); err != nil {
		failures = append(failures, validate.FieldError{Name: "address", Error: err})
	}

	phone := strings.TrimSpace(s.Phone)
	if err := checkString(phone, v.phone); err != nil {
		failures = append(failures, validate.FieldError{Name: "phone", Error: err})
	}

	if v.rules.RequireItems && len(s.Items) == 0 {
		failures = append(failures, validate.FieldError{Name: "items", Error: ErrFieldRequired})
	}

	pricesOK := true
	for i, it := range s.Items {
		if err := CheckAmount(it.Price); err != nil {
			failures = append(failures, validate.FieldError{Name: fmt.Sprintf("items[%d].price", i), Error: err})
			pricesOK = false
		}
	}

	total, err := v.checkTotal(s.Total, s.Items, pricesOK)
	if err != nil {
		failures = append(failures, validate.FieldError{Name: "total", Error: err})
	}

	if len(failures) > 0 {
		return Draft{}, &ValidationError{Fields: failures}
	}

	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return Draft{
		Address: address,
		Phone:   phone,
		Note:    s.Note,
		Items:   items,
		Total:   total,
	}, nil
}

// checkTotal parses the client-computed total and verifies it matches the sum
// of the item prices. The sum is skipped when a price is already rejected.
func (v *Validator) checkTotal(raw string, items []Item, pricesOK bool) (Total, error) {
	if strings.TrimSpace(raw) == "" {
		return Total{}, ErrFieldRequired
	}
	total, err := ParseTotal(raw, v.rules.Currency)
	if err != nil {
		return Total{}, err
	}
	if !pricesOK {
		return total, nil
	}
	if sum := SumItems(items); !total.Amount.Equal(sum) {
		return Total{}, errors.Errorf("total %s does not match items sum %s", total.Amount.StringFixed(2), sum.StringFixed(2))
	}
	return total, nil
}

func checkString(s string, rule validate.String) error {
	if s == "" {
		return ErrFieldRequired
	}
	return rule.Validate(s)
}
