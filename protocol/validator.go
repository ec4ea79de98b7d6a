package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator is a type able to validate itself. Validate inspects the type for
// syntactic or semantic issues, and returns a descriptive error if any
// violations are encountered. It is recommended that Validate return instances
// of ValidationError or ValidationErrors where possible, which enables
// tracking the paths of nested fields.
type Validator interface {
	Validate() error
}

// ValidationError is an error implementation which captures its validation context.
type ValidationError struct {
	Context []string
	Err     error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Context) != 0 {
		return strings.Join(ve.Context, ".") + ": " + ve.Err.Error()
	} else {
		return ve.Err.Error()
	}
}

// Path is the dotted field path of the ValidationError, or "" if the error
// applies to the request as a whole.
func (ve *ValidationError) Path() string { return strings.Join(ve.Context, ".") }

// Message is the error message, without its path.
func (ve *ValidationError) Message() string { return ve.Err.Error() }

// ExtendContext type-checks |err| to a *ValidationError or ValidationErrors,
// and if matched extends it with |context|. In all cases the value of |err|
// is returned.
func ExtendContext(err error, format string, args ...interface{}) error {
	switch ve := err.(type) {
	case *ValidationError:
		ve.Context = append([]string{fmt.Sprintf(format, args...)}, ve.Context...)
	case ValidationErrors:
		for _, e := range ve {
			_ = ExtendContext(e, format, args...)
		}
	}
	return err
}

// NewValidationError parallels fmt.Errorf to returns a new ValidationError instance.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// ValidationErrors is an ordered set of ValidationError. It's returned by
// request Validate implementations which check every field before returning.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	var parts = make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Add |err| (if non-nil) to the ValidationErrors under the given field.
// An |err| which isn't a *ValidationError or ValidationErrors is wrapped as one.
func (ve *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *ValidationError:
		if field != "" {
			_ = ExtendContext(e, "%s", field)
		}
		*ve = append(*ve, e)
	case ValidationErrors:
		for _, ee := range e {
			ve.Add(field, ee)
		}
	default:
		*ve = append(*ve, &ValidationError{Context: []string{field}, Err: err})
	}
}

// Addf adds a new ValidationError of the field, formatted per fmt.Errorf.
func (ve *ValidationErrors) Addf(field string, format string, args ...interface{}) {
	ve.Add(field, NewValidationError(format, args...))
}

// OrNil returns the ValidationErrors as an error, or nil if it's empty.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// AsValidationErrors flattens |err| into ValidationErrors, returning false
// if |err| is not a validation error.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	switch e := err.(type) {
	case *ValidationError:
		return ValidationErrors{e}, true
	case ValidationErrors:
		return e, true
	}
	return nil, false
}

// ValidateLength ensures that the (rune) length of string |s| is within
// [min, max]. |label| is the human-readable name of the field used in
// returned messages.
func ValidateLength(s, label string, min, max int) error {
	if l := utf8.RuneCountInString(s); l < min {
		return NewValidationError("%s must be at least %d characters", label, min)
	} else if max > 0 && l > max {
		return NewValidationError("%s must be at most %d characters", label, max)
	}
	return nil
}

// errRequired is the message of a missing required field.
const errRequired = "Required"
