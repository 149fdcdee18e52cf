package producer

import (
	"context"
	"encoding/json"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

type IOrderEventPublisher interface {
	Publish(ctx context.Context, evt event.Event) error
}

// OrderEventProducer 以 order id 為 key, 同一筆訂單的事件會進同一個 partition
type OrderEventProducer struct {
	producer Producer
}

func NewOrderEventProducer(producer Producer) *OrderEventProducer {
	if producer == nil {
		panic("producer cannot be nil")
	}
	return &OrderEventProducer{producer: producer}
}

func (o *OrderEventProducer) Publish(ctx context.Context, evt event.Event) error {
	msg, err := convertToMessage(evt)
	if err != nil {
		return err
	}
	return o.producer.Produce(ctx, msg)
}

func convertToMessage(evt event.Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(evt.GetAggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(evt.Type())},
		},
	}, nil
}

// LogEventPublisher 未設定 kafka broker 時使用
type LogEventPublisher struct{}

func (LogEventPublisher) Publish(ctx context.Context, evt event.Event) error {
	log.Info().
		Str("event_type", string(evt.Type())).
		Str("event_id", evt.GetID()).
		Str("order_id", evt.GetAggregateID()).
		Msg("kafka not configured, event dropped")
	return nil
}
