package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("this action is unauthorized")
	ErrInsufficientStock  = errors.New("not enough stock available")
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// ValidationError carries per-field messages, keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string

	// order keeps fields in the order they failed.
	order []string
}

func NewValidationError(field, msg string) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, msg)
	return ve
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Error returns the first message and how many others follow it.
func (e *ValidationError) Error() string {
	var first string
	total := 0
	for _, field := range e.order {
		for _, msg := range e.Fields[field] {
			if total == 0 {
				first = msg
			}
			total++
		}
	}
	switch total {
	case 0:
		return "The given data was invalid."
	case 1:
		return first
	case 2:
		return first + " (and 1 more error)"
	}
	return fmt.Sprintf("%s (and %d more errors)", first, total-1)
}
