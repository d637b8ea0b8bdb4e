package domain

import (
	"context"
	"database/sql"
)

// TxRunner owns the database transaction boundary for composite
// postings. An error from fn rolls back every write made through the
// handle; otherwise the transaction commits.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
