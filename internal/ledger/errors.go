package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("ledger: not found")
	ErrInvalidCredentials = errors.New("ledger: invalid credentials")
	ErrInsufficientStock  = errors.New("ledger: insufficient stock")
	ErrValidation         = errors.New("ledger: invalid input")
)

// ValidationError reports a malformed input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientStockError is returned by ConsumeStock when the request exceeds on-hand quantity.
type InsufficientStockError struct {
	ItemID    uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for item %d: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}
