package services

import (
	"errors"
	"fmt"
)

// Error kinds handled by the conversation layer.
var (
	ErrConfigMissing   = errors.New("configuration missing")
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownState    = errors.New("unknown session state")
	ErrPersistence     = errors.New("persistence failure")
	ErrDelivery        = errors.New("delivery failure")
)

// FlowError ties a failure to its kind and the operation that hit it.
type FlowError struct {
	Kind error
	Op   string
	Err  error
}

func (e *FlowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *FlowError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func flowError(kind error, op string, err error) *FlowError {
	return &FlowError{Kind: kind, Op: op, Err: err}
}

// KindName labels an error for logs and metrics.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrUnknownState):
		return "unknown_state"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	default:
		return "internal"
	}
}
