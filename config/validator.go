package config

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Validator collects configuration violations so a caller sees every problem
// at once instead of fixing them one by one.
type Validator struct {
	errors []error
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// AddError records a violation for a field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, fmt.Errorf("%s: %s", field, message))
}

// RequireNonEmpty validates that a string field is not empty.
func (v *Validator) RequireNonEmpty(field, value string) {
	if value == "" {
		v.AddError(field, "cannot be empty")
	}
}

// RequireOneOf validates that a string value is one of the allowed values.
func (v *Validator) RequireOneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %v", allowed))
}

// RequireInRange validates that a value lies within an inclusive range.
func RequireInRange[T constraints.Ordered](v *Validator, field string, value, min, max T) {
	if value < min || value > max {
		v.AddError(field, fmt.Sprintf("must be between %v and %v", min, max))
	}
}

// Errors returns all recorded violations.
func (v *Validator) Errors() []error {
	return v.errors
}
