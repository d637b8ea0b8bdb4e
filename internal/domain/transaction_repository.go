package domain

import (
	"context"
	"database/sql"
	"time"
)

// TransactionRepository is the append-only ledger store. Appends run
// inside the caller's transaction so the entry commits together with
// the balance change it records.
type TransactionRepository interface {
	// Append inserts the entry and returns it with its assigned sequence
	// id and timestamp.
	Append(ctx context.Context, tx *sql.Tx, transaction Transaction) (Transaction, error)

	// RecentByAccount returns up to limit entries for the account, most
	// recent first. Returns ErrNoRecords when the account has none.
	RecentByAccount(ctx context.Context, iban string, limit int) ([]Transaction, error)

	// BetweenByAccount returns entries whose timestamp falls inside the
	// inclusive [start, end] range, most recent first. Returns
	// ErrNoRecords when the range is empty.
	BetweenByAccount(ctx context.Context, iban string, start, end time.Time) ([]Transaction, error)
}
