package domain

import "context"

// ParticipantBank identifies an external bank a transfer counterparty
// may belong to. Used only to label ledger entries whose counterparty
// is not a customer account.
type ParticipantBank struct {
	BankName string
	BankCode string
	BIC      string
}

type ParticipantBankRepository interface {
	GetAll(ctx context.Context) ([]ParticipantBank, error)
	GetByCode(ctx context.Context, bankCode string) (ParticipantBank, bool, error)
}
