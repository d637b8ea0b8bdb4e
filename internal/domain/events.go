package domain

import "context"

// EventPublisher receives committed ledger entries. Publishing is
// best-effort and happens after the posting transaction commits; a
// publish failure never unwinds the posting.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, transaction Transaction) error
}
