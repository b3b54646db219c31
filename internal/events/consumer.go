package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agure1996/cinab-website/internal/order"
)

// statusUpdater is the slice of the order repository the consumer needs.
type statusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, status order.Status) error
}

// StartOrderPlacedConsumer binds the service queue to the events exchange and
// moves each placed order from pending to processing.
func StartOrderPlacedConsumer(ctx context.Context, conn *amqp.Connection, orders statusUpdater, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	queue := shopQueueName(OrderPlacedRoutingKey)
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(queue, OrderPlacedRoutingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(
		queue,
		shopServiceName, // consumer tag
		false,           // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping order.placed consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("messages channel closed")
					return
				}

				if err := handleOrderPlaced(ctx, orders, msg.Body, logger); err != nil {
					logger.Printf("handle message error: %v", err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleOrderPlaced(ctx context.Context, orders statusUpdater, body []byte, logger *log.Logger) error {
	var env OrderPlacedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := env.Validate(orderPlacedEventName, orderPlacedEventVersion); err != nil {
		return fmt.Errorf("validate envelope: %w", err)
	}

	if err := orders.UpdateStatus(ctx, env.Payload.OrderID, order.StatusProcessing); err != nil {
		return fmt.Errorf("mark order processing: %w", err)
	}

	logger.Printf("order %s moved to processing (seq %d)", env.Payload.OrderID, derefSeq(env.Sequence))
	return nil
}

func derefSeq(seq *int64) int64 {
	if seq == nil {
		return 0
	}
	return *seq
}
