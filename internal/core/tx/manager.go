// Package tx defines the unit-of-work contract used by every consumption entry point.
// Implementations live in infrastructure/storage.
package tx

import (
	"context"
)

// Manager runs a function inside one transaction.
//
// If fn returns an error, everything it wrote is rolled back; otherwise it is committed.
// Nested calls reuse the transaction already carried by ctx, so a service that opens a
// transaction can call another service that does the same without splitting the unit of work.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
