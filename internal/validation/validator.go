// Package validation provides input validation utilities for load operations.
// Validators are small reusable checks that report failures as
// *errors.LoadError values, and can be combined with CompoundValidator.
package validation

import (
	"fmt"

	"github.com/paveg/csvread/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// LengthValidator validates length consistency of paired vectors
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.WithOp(errors.ErrMismatchedLength, v.op)
	}
	return nil
}

// RequiredValidator fails with a sentinel when a required value is absent
type RequiredValidator struct {
	present  bool
	sentinel *errors.LoadError
	op       string
}

// NewRequiredValidator creates a validator reporting sentinel when present is false
func NewRequiredValidator(present bool, sentinel *errors.LoadError, op string) *RequiredValidator {
	return &RequiredValidator{
		present:  present,
		sentinel: sentinel,
		op:       op,
	}
}

// Validate checks that the value is present
func (v *RequiredValidator) Validate() error {
	if !v.present {
		return errors.WithOp(v.sentinel, v.op)
	}
	return nil
}

// RangeValidator validates that an integer lies within [minValue, maxValue]
type RangeValidator struct {
	name     string
	value    int
	minValue int
	maxValue int
	op       string
}

// NewRangeValidator creates a validator for an inclusive integer range
func NewRangeValidator(name string, value, minValue, maxValue int, op string) *RangeValidator {
	return &RangeValidator{
		name:     name,
		value:    value,
		minValue: minValue,
		maxValue: maxValue,
		op:       op,
	}
}

// Validate checks the range
func (v *RangeValidator) Validate() error {
	if v.value < v.minValue || v.value > v.maxValue {
		message := fmt.Sprintf("'%s' must be between %d and %d, got %d", v.name, v.minValue, v.maxValue, v.value)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// DelimiterValidator validates a single-byte field delimiter
type DelimiterValidator struct {
	delimiter string
	op        string
}

// NewDelimiterValidator creates a validator for a delimiter given as text
func NewDelimiterValidator(delimiter, op string) *DelimiterValidator {
	return &DelimiterValidator{
		delimiter: delimiter,
		op:        op,
	}
}

// Validate checks that the delimiter is exactly one byte and not a quote or newline
func (v *DelimiterValidator) Validate() error {
	if len(v.delimiter) != 1 {
		return errors.NewValidationError(v.op, "", "delimiter must be a single character")
	}
	switch v.delimiter[0] {
	case '"', '\n':
		return errors.NewValidationError(v.op, "", fmt.Sprintf("delimiter %q is reserved", v.delimiter))
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateRequired is a convenience function for presence validation
func ValidateRequired(present bool, sentinel *errors.LoadError, op string) error {
	return NewRequiredValidator(present, sentinel, op).Validate()
}

// ValidateRange is a convenience function for range validation
func ValidateRange(name string, value, minValue, maxValue int, op string) error {
	return NewRangeValidator(name, value, minValue, maxValue, op).Validate()
}

// ValidateDelimiter is a convenience function for delimiter validation
func ValidateDelimiter(delimiter, op string) error {
	return NewDelimiterValidator(delimiter, op).Validate()
}
