package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agure1996/cinab-website/internal/order"
)

// sequencer yields the next per-partition sequence number.
type sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type Publisher struct {
	ch       *amqp.Channel
	seqRepo  sequencer
	producer string
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo sequencer, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = shopServiceName
	}

	return &Publisher{ch: ch, seqRepo: seqRepo, producer: producer}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, meta EnvelopeMetadata, o *order.Order) error {
	seq, err := p.seqRepo.NextSequence(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildOrderPlacedEnvelope(o, seq, meta)
	env.Producer = p.producer

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced envelope: %w", err)
	}

	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *Publisher) PublishStockDecremented(ctx context.Context, meta EnvelopeMetadata, o *order.Order) error {
	seq, err := p.seqRepo.NextSequence(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildStockDecrementedEnvelope(o, seq, meta)
	env.Producer = p.producer

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal StockDecremented envelope: %w", err)
	}

	return p.publishJSON(ctx, StockDecrementRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
