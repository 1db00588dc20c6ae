// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// postalCodePattern accepts letters, digits, single spaces and hyphens,
// starting and ending with an alphanumeric, 3 to 10 characters long.
var postalCodePattern = regexp.MustCompile(`^[0-9A-Za-z](?:[0-9A-Za-z -]{1,8})[0-9A-Za-z]$`)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the application's custom
// rules registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return IsPostalCode(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// IsPostalCode reports whether s looks like a postal code.
func IsPostalCode(s string) bool {
	return postalCodePattern.MatchString(s)
}
