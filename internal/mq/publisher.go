package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType: тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRenderRequested MessageType = "render.requested"
	MessageTypeRenderCompleted MessageType = "render.completed"
)

// Message: конверт сообщения.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RenderRequestedPayload: новое задание рендеринга.
type RenderRequestedPayload struct {
	JobID      uuid.UUID `json:"job_id"`
	ContractID uuid.UUID `json:"contract_id"`
}

// RenderCompletedPayload: итог задания рендеринга.
type RenderCompletedPayload struct {
	JobID      uuid.UUID `json:"job_id"`
	ContractID uuid.UUID `json:"contract_id"`
	Status     string    `json:"status"` // SUCCEEDED или FAILED
	Format     string    `json:"format"`
	Bytes      int       `json:"bytes"`
	Unresolved int       `json:"unresolved"`
	Error      string    `json:"error,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

func newMessage(t MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// PublishRenderRequested публикует новое задание.
// Потребитель: contracta-renderer.
func (p *Publisher) PublishRenderRequested(ctx context.Context, jobID, contractID uuid.UUID) error {
	msg := newMessage(MessageTypeRenderRequested, RenderRequestedPayload{
		JobID:      jobID,
		ContractID: contractID,
	})
	return p.Publish(ctx, ExchangeRenders, RoutingKeyRequested, msg)
}

// PublishRenderCompleted публикует итог задания.
func (p *Publisher) PublishRenderCompleted(ctx context.Context, payload RenderCompletedPayload) error {
	return p.Publish(ctx, ExchangeRenders, RoutingKeyCompleted, newMessage(MessageTypeRenderCompleted, payload))
}
