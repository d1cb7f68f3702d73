package ml

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrInvalidModel wraps every artifact load failure.
	ErrInvalidModel = errors.New("invalid model artifact")
	// ErrUnknownLabel is returned when a classifier emits a class other than 0 or 1.
	ErrUnknownLabel = errors.New("classifier returned unknown label")
	ErrNoModel      = errors.New("no model loaded")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// WidthError reports a feature vector whose length does not match the
// width the classifier was trained on.
type WidthError struct {
	Got  int
	Want int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("feature vector has %d values, model expects %d", e.Got, e.Want)
}

func invalidEnum(field, value string) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unrecognized value %q", value)}
}

// IsValidation reports whether err is caused by bad input rather than a
// server-side failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	var we *WidthError
	return errors.As(err, &ve) || errors.As(err, &we)
}

// FieldErrors flattens a (possibly combined) validation error into its parts.
func FieldErrors(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}
