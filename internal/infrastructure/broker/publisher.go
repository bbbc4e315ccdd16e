package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/verone/commerce-core/internal/application/orders"
)

var _ orders.EventPublisher = (*Publisher)(nil)

// Publisher publica eventos de dominio en Kafka. Los eventos se emiten tras
// el commit; el consumidor debe tolerar duplicados (at-least-once).
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher construye el productor.
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &Publisher{writer: writer}
}

// Publish serializa el evento como JSON y lo escribe con la clave dada
// (misma clave = misma partición = orden preservado por orden de venta).
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
