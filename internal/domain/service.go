package domain

import "context"

// TransactionManager runs a function inside a database transaction. The
// transaction travels in the context; repositories pick it up through their
// executor lookup, so service code stays free of sqlx types.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
