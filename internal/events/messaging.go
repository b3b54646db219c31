package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange           = "ecommerce.events"
	OrderPlacedRoutingKey    = "order.placed.v1"
	StockDecrementRoutingKey = "stock.decremented.v1"
	shopServiceName          = "shop-service"
)

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

func shopQueueName(routingKey string) string {
	return serviceQueue(shopServiceName, routingKey)
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
