// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEntryNotFound      = errors.New("entry not found")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every invalid field of a request at once.
// It may wrap a more specific cause such as ErrPasswordMismatch.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Messages(), "; "))
}

// Unwrap returns the specific cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// Messages returns the human-readable message of each field error.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

// validator collects field errors without stopping at the first one.
type validator struct {
	fields []FieldError
}

func (v *validator) add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// required rejects empty and whitespace-only values.
func (v *validator) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.add(field, fmt.Sprintf("%q is required", field))
		return false
	}
	return true
}

// text reports a field that arrived with a non-string JSON type, otherwise
// applies required.
func (v *validator) text(field, value string, mistyped []string) bool {
	if slices.Contains(mistyped, field) {
		v.add(field, fmt.Sprintf("%q must be a string", field))
		return false
	}
	return v.required(field, value)
}

// amount parses raw as a non-zero decimal.
func (v *validator) amount(field, raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.add(field, fmt.Sprintf("%q is required", field))
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		v.add(field, fmt.Sprintf("%q must be a number", field))
		return decimal.Zero, false
	}
	if d.IsZero() {
		v.add(field, fmt.Sprintf("%q must not be zero", field))
		return decimal.Zero, false
	}
	return d, true
}

func (v *validator) maxLen(field, value string, n int) {
	if len(value) > n {
		v.add(field, fmt.Sprintf("%q length must be less than or equal to %d characters long", field, n))
	}
}

// err returns nil when no field failed.
func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
