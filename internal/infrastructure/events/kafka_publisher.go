// Package events publica eventos de dominio en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
)

// EventTypeBatchCompleted tipo del evento de cierre de lote.
const EventTypeBatchCompleted = "stock.bulk_update.completed"

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter subconjunto de *kafka.Writer que usa el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica los eventos como JSON. El contexto de traza activo se
// inyecta en los headers del mensaje.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	tracer trace.Tracer
	log    zerolog.Logger
}

// NewKafkaWriter construye el writer de segmentio para los brokers dados.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher construye el publicador sobre writer.
func NewKafkaPublisher(writer MessageWriter, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		tracer: otel.Tracer("github.com/jhoicas/pipr-api/internal/infrastructure/events"),
		log:    log,
	}
}

// PublishBatchCompleted publica el resumen de un lote. La clave del mensaje es el
// CEDI, así los eventos de un mismo CEDI quedan en la misma partición.
func (p *KafkaPublisher) PublishBatchCompleted(ctx context.Context, evt inventory.BatchCompletedEvent) error {
	ctx, span := p.tracer.Start(ctx, "kafka.publish "+EventTypeBatchCompleted,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("batch.id", evt.BatchID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []kafka.Header{{Key: "event_type", Value: []byte(EventTypeBatchCompleted)}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(fmt.Sprintf("cedi-%d", evt.CediID)),
		Value:   payload,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publicar %s: %w", EventTypeBatchCompleted, err)
	}
	p.log.Debug().Str("batch_id", evt.BatchID).Str("topic", p.topic).Msg("evento publicado")
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
