package hub

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPMirror republishes hub notifications to a fanout exchange so external
// consumers (printers, signage, audit) can observe activity without holding
// a websocket into the process.
type AMQPMirror struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPMirror dials the broker and declares the fanout exchange.
func NewAMQPMirror(url, exchange string, logger zerolog.Logger) (*AMQPMirror, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPMirror{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp_mirror").Logger(),
	}, nil
}

// Publish sends the notification body to the fanout exchange. The routing
// key carries the category for consumers that filter on headers instead of
// parsing the body.
func (m *AMQPMirror) Publish(ctx context.Context, category string, body []byte) error {
	return m.ch.PublishWithContext(
		ctx,
		m.exchange,
		category,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close shuts down the channel and connection.
func (m *AMQPMirror) Close() {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
}
