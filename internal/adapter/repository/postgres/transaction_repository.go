package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finadem/core-banking/internal/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `transaction_id, reference, customer_account, transacting_account, COALESCE(bic, ''), amount, currency, type, source, status, COALESCE(remarks, ''), timestamp`

func (r *TransactionRepository) Append(ctx context.Context, tx *sql.Tx, transaction domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	reference,
	customer_account,
	transacting_account,
	bic,
	amount,
	currency,
	type,
	source,
	status,
	remarks
) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, NULLIF($10, ''))
RETURNING transaction_id, timestamp`

	if err := tx.QueryRowContext(
		ctx,
		query,
		transaction.Reference,
		transaction.CustomerAccount,
		transaction.TransactingAccount,
		transaction.BIC,
		transaction.Amount,
		transaction.Currency,
		transaction.Type,
		transaction.Source,
		transaction.Status,
		transaction.Remarks,
	).Scan(&transaction.ID, &transaction.Timestamp); err != nil {
		return domain.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	return transaction, nil
}

func (r *TransactionRepository) RecentByAccount(ctx context.Context, iban string, limit int) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE customer_account = $1
ORDER BY timestamp DESC, transaction_id DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, iban, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *TransactionRepository) BetweenByAccount(ctx context.Context, iban string, start, end time.Time) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE customer_account = $1 AND timestamp BETWEEN $2 AND $3
ORDER BY timestamp DESC, transaction_id DESC`

	rows, err := r.db.QueryContext(ctx, query, iban, start, end)
	if err != nil {
		return nil, fmt.Errorf("query transactions between dates: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.Reference,
			&t.CustomerAccount,
			&t.TransactingAccount,
			&t.BIC,
			&t.Amount,
			&t.Currency,
			&t.Type,
			&t.Source,
			&t.Status,
			&t.Remarks,
			&t.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	if len(transactions) == 0 {
		return nil, domain.ErrNoRecords
	}

	return transactions, nil
}
