package domain

import "context"

// TransactFunc receives the current raw records and returns the normalized
// collection to persist. Returning an error aborts the transaction without a write.
type TransactFunc func(records []RawRecord) ([]Tool, error)

// RecordStore persists the tool collection.
type RecordStore interface {
	// ReadAll returns the raw records. Storage faults degrade to an empty result.
	ReadAll(ctx context.Context) []RawRecord
	// Transact runs a locked read-modify-write.
	Transact(ctx context.Context, fn TransactFunc) error
	// Backend names the backing medium.
	Backend() string
	Close() error
}

// Locker provides mutual exclusion for write transactions.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
}

type operationKey struct{}

// WithOperation tags ctx with the catalog operation driving a store call.
func WithOperation(ctx context.Context, op string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the operation tag, or "unknown".
func OperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "unknown"
}
