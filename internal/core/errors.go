package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched (via errors.Is) by every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrNoItems is returned when an order is submitted without lines.
	ErrNoItems = errors.New("order must have at least one line")
	// ErrHasOrders blocks deleting a client that is still referenced by orders.
	ErrHasOrders = errors.New("client has orders and cannot be deleted")
	// ErrDuplicateProduct is returned when an active product with the same
	// name, size, color and school already exists.
	ErrDuplicateProduct = errors.New("an active product with the same name, size, color and school already exists")
	// ErrDuplicateSchool is returned when a school name is already taken.
	ErrDuplicateSchool = errors.New("a school with this name already exists")
)

// NotFoundError reports a missing order, product, client or school.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError is recoverable: the caller can retry with at most Available units.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError reports a status change that is not an edge of the order state machine.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s → %s", e.From, e.To)
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a persistence-layer failure (connection loss, constraint violation).
// The core never retries.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it already carries a domain meaning.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.Is(err, ErrNotFound) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func notFound(entity string, id int) error {
	return &NotFoundError{Entity: entity, ID: id}
}
