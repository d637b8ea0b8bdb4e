package domain

import "errors"

var (
	// ErrAccountNotFound indicates that a referenced account is missing
	// where auto-provisioning is not allowed.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount indicates a create collided with an existing IBAN.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInsufficientBalance indicates a withdrawal or debit would breach
	// the non-negative balance invariant. No writes are performed.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSelfTransfer indicates sender and recipient are the same account.
	ErrSelfTransfer = errors.New("sender and recipient accounts must differ")
	// ErrInvalidTransferType indicates a transfer movement other than
	// CREDIT or DEBIT.
	ErrInvalidTransferType = errors.New("transfer type must be CREDIT or DEBIT")
	// ErrRateUnavailable indicates the upstream rate lookup failed.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrCurrencyConversion indicates an amount could not be converted to
	// the settlement currency. Callers may retry with a fresh rate.
	ErrCurrencyConversion = errors.New("currency conversion failed")
	// ErrNegativeBalance is the defensive invariant check inside the
	// balance mutation path. Seeing it after the engine's own checks
	// means a concurrency-control defect.
	ErrNegativeBalance = errors.New("balance update would go negative")
	// ErrNoRecords indicates a history query matched zero ledger entries.
	ErrNoRecords = errors.New("no transaction records found")
	// ErrInvalidRange indicates a history range with start after end.
	ErrInvalidRange = errors.New("start date is after end date")
	// ErrTransactionFailed wraps infrastructure failures during a posting.
	// The posting is rolled back in full.
	ErrTransactionFailed = errors.New("transaction failed")
)
