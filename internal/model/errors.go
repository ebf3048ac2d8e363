package model

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RangeError reports a numeric field outside its valid domain.
type RangeError struct {
	Field string
	Value interface{}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// ArgumentError reports an empty or structurally invalid text field.
type ArgumentError struct {
	Field string
	Value interface{}
}

func (e *ArgumentError) Error() string {
	if s, ok := e.Value.(string); ok && s == "" {
		return fmt.Sprintf("empty %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func outOfRange(field string, v interface{}) error {
	return &RangeError{Field: field, Value: v}
}

func invalidArgument(field string, v interface{}) error {
	return &ArgumentError{Field: field, Value: v}
}
