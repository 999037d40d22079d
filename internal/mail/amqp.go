package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPMailer hands messages to a worker through a durable RabbitMQ queue.
// It dials per send; signup traffic is low and this keeps no broker state
// in the API process.
type AMQPMailer struct {
	url   string
	queue string
}

func NewAMQPMailer(url, queue string) *AMQPMailer {
	return &AMQPMailer{url: url, queue: queue}
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		m.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", m.queue, false, false, pub); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}
