package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks a 401 from the backend. It is logged, never redirected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks a 404 from the backend.
	ErrNotFound = errors.New("not found")
	// ErrNoWarehouseAvailable is returned when the actor's scope holds no warehouse.
	ErrNoWarehouseAvailable = errors.New("no warehouse available")
)

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConversionError is a backend rejection of a quote conversion: the quote was
// already converted, is not approved, or the warehouse is outside the actor's scope.
type ConversionError struct {
	QuoteID int
	Cause   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("quote %d could not be converted: %v", e.QuoteID, e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// TransitionError is a backend rejection of a progression or cancellation call.
// Current holds the order as re-fetched after the rejection, when available.
type TransitionError struct {
	OrderID int
	Action  Action
	Cause   error
	Current *SalesOrder
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("order %d: %s rejected: %v", e.OrderID, e.Action, e.Cause)
	if e.Current != nil {
		msg += fmt.Sprintf(" (current status %s)", e.Current.Status)
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return e.Cause }

// NetworkError is a transport failure: no HTTP response was received.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// UserMessage renders err for display at the action boundary.
func UserMessage(err error) string {
	var (
		valErr   *ValidationError
		convErr  *ConversionError
		transErr *TransitionError
		netErr   *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Your session is not authorized for this action."
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &convErr):
		return fmt.Sprintf("Quote %d could not be converted. Pick another warehouse or try again.", convErr.QuoteID)
	case errors.As(err, &transErr):
		if transErr.Current != nil {
			return fmt.Sprintf("Order %s is now %s; the action %q no longer applies.",
				transErr.Current.OrderNumber, transErr.Current.Status.Label(), transErr.Action.Label())
		}
		return fmt.Sprintf("The action %q was rejected for order %d.", transErr.Action.Label(), transErr.OrderID)
	case errors.As(err, &netErr):
		return "The server could not be reached."
	default:
		return err.Error()
	}
}
