package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange: тип для имени обменника.
type Exchange string

// Queue: тип для имени очереди.
type Queue string

// RoutingKey: тип для ключа маршрутизации.
type RoutingKey string

// Exchanges: имена обменников.
const (
	ExchangeRenders Exchange = "contracta.renders"
	ExchangeDLQ     Exchange = "contracta.dlq"
)

// Queues: имена очередей.
const (
	QueueRendersRequested Queue = "renders.requested"
	QueueRendersCompleted Queue = "renders.completed"
	QueueDLQRenders       Queue = "dlq.renders"
)

// Routing keys.
const (
	RoutingKeyRequested  RoutingKey = "requested"
	RoutingKeyCompleted  RoutingKey = "completed"
	RoutingKeyDLQRenders RoutingKey = "renders"
)

// binding связывает очередь с обменником.
type binding struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
	args       amqp.Table
}

// topology: полное описание объектов брокера.
var topology = []binding{
	// renders.requested: с DLQ, задание может упасть повторно после redelivery
	{QueueRendersRequested, RoutingKeyRequested, ExchangeRenders, amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRenders),
	}},

	// renders.completed: уведомления для внешних подписчиков
	{QueueRendersCompleted, RoutingKeyCompleted, ExchangeRenders, nil},

	{QueueDLQRenders, RoutingKeyDLQRenders, ExchangeDLQ, nil},
}

// SetupTopology объявляет обменники и очереди. Операция идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeRenders, ExchangeDLQ} {
			if err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, b := range topology {
			if _, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				b.args,          // arguments
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(
				string(b.queue),
				string(b.routingKey),
				string(b.exchange),
				false,
				nil,
			); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Contracta RabbitMQ Topology:

    contracta.renders (direct)
    ├── renders.requested [routing: requested]
    │       Consumer: contracta-renderer
    │       DLQ: dlq.renders
    └── renders.completed [routing: completed]
            Consumer: external subscribers

    contracta.dlq (direct)
    └── dlq.renders [routing: renders]
            Manual processing
`
}
