package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/ogen-go/ogen/validate"
)

// ErrFieldRequired marks a required field that was empty.
var ErrFieldRequired = errors.New("field required")

// ValidationError reports user-correctable problems in a submission. It is
// returned before the store is touched.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + ": " + f.Error.Error()
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

// Field returns the failure recorded for the named field, or nil.
func (e *ValidationError) Field(name string) error {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Error
		}
	}
	return nil
}

// StoreUnavailableError reports that the order store could not complete an
// operation. No order was created when Create fails with it.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("order store %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a StoreUnavailableError unless it already is one.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var sue *StoreUnavailableError
	if errors.As(err, &sue) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}
