package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique relation already exists.
	ErrConflict = errors.New("already exists")
	// ErrPermission is returned when the actor may not perform the mutation.
	ErrPermission = errors.New("permission denied")
	// ErrSelfSubscription is returned on attempts to follow oneself.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	// ErrEmptyCart is returned when a shopping list is requested for an empty cart.
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrInvalidCredentials is returned on failed login attempts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-keyed messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
