package consumer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/producer"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

var (
	ErrConsumerClosed         = errors.New("consumer closed")
	ErrConsumerAlreadyRunning = errors.New("consumer is already running")
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

func NewReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: 0,
		Dialer: &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
			KeepAlive: 30 * time.Second,
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka reader error: "+msg, args...)
		}),
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 5 * time.Second,
	})
}

// EventHandler 處理單一事件, 回傳錯誤時該訊息仍會 commit, 只記 log
type EventHandler interface {
	HandleEvent(ctx context.Context, evt event.Event) error
}

type IBaseConsumer interface {
	Start(ctx context.Context) error
	Stop()
}

// OrderEventConsumer 依 header 的 event_type 解析訂單事件後交給 handler
type OrderEventConsumer struct {
	reader    KafkaReader
	handler   EventHandler
	closeChan chan struct{}
	running   bool
	mu        sync.Mutex
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

func NewOrderEventConsumer(reader KafkaReader, handler EventHandler) *OrderEventConsumer {
	if reader == nil {
		panic("kafka reader cannot be nil")
	}
	if handler == nil {
		panic("event handler cannot be nil")
	}
	return &OrderEventConsumer{reader: reader, handler: handler, closeChan: make(chan struct{})}
}

func (c *OrderEventConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *OrderEventConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkIsClosed() {
		return ErrConsumerClosed
	}
	if c.running {
		return ErrConsumerAlreadyRunning
	}
	c.running = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop(ctx)
	}()
	return nil
}

func (c *OrderEventConsumer) loop(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Err(err).Msg("failed to fetch order event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit order event")
		}
	}
}

func (c *OrderEventConsumer) process(ctx context.Context, msg kafka.Message) {
	eventType := headerValue(msg, producer.EventTypeHeader)
	evt, err := event.Decode(event.EventType(eventType), msg.Value)
	if err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Int64("offset", msg.Offset).Msg("skip undecodable order event")
		return
	}
	if err := c.handler.HandleEvent(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("order_id", evt.GetAggregateID()).Msg("failed to handle order event")
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *OrderEventConsumer) Stop() {
	c.mu.Lock()
	if c.checkIsClosed() {
		c.mu.Unlock()
		return
	}
	close(c.closeChan)
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
	if err := c.reader.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close kafka reader")
	}
}
