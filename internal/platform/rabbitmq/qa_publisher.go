package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"pdfqa/internal/model"
)

// QAPublisher pushes answered exchanges onto the persistence queue so the
// request path never waits on MySQL.
type QAPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewQAPublisher(conn *amqp.Connection, queueName string) *QAPublisher {
	return &QAPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *QAPublisher) Publish(ctx context.Context, ex model.QAExchange) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal qa exchange payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish qa exchange failed: %w", err)
	}
	return nil
}
