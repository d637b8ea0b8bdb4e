package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finadem/core-banking/internal/domain"
	"github.com/streadway/amqp"
)

const transactionQueue = "ledger.transactions"

// Publisher pushes committed ledger entries onto RabbitMQ for
// downstream consumers (notifications, reporting). Publishing happens
// after the posting commits and never affects it.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewPublisher(uri string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		transactionQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, queue: q}, nil
}

func (p *Publisher) PublishTransaction(_ context.Context, transaction domain.Transaction) error {
	body, err := json.Marshal(transactionEvent(transaction))
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	if err := p.channel.Publish(
		"",
		transactionQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish transaction event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

func transactionEvent(t domain.Transaction) map[string]any {
	return map[string]any{
		"transactionId":      t.ID,
		"reference":          t.Reference,
		"customerAccount":    t.CustomerAccount,
		"transactingAccount": t.TransactingAccount,
		"amount":             t.Amount.StringFixed(2),
		"currency":           t.Currency,
		"type":               t.Type,
		"source":             t.Source,
		"status":             t.Status,
		"timestamp":          t.Timestamp,
	}
}
