package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found or does not
	// belong to the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart indicates a checkout was attempted with no cart items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotCancellable indicates a cancel was attempted on an order that is
	// past the cancellable statuses.
	ErrNotCancellable = errors.New("order cannot be cancelled")
)

// InsufficientStockError reports that a requested quantity exceeds the
// variant's available stock. Recoverable by the caller.
type InsufficientStockError struct {
	VariantID   string
	ProductName string
	Size        string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.VariantID
	}
	if e.Size != "" {
		name = fmt.Sprintf("%s (%s)", name, e.Size)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

// ProductUnavailableError reports that a variant or its parent product has
// been deactivated in the catalog.
type ProductUnavailableError struct {
	VariantID   string
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.VariantID
	}
	return fmt.Sprintf("product no longer available: %s", name)
}

// InvalidTransitionError reports a status change not permitted by the order
// lifecycle graph.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
