package producer

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Producer 同步寫入 kafka
type Producer interface {
	Produce(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers       []string
	Topic         string
	BatchTimeout  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

func (c *Config) Validate() error {
	if len(c.Brokers) == 0 || c.Topic == "" {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaProducer struct {
	writer messageWriter
	cfg    Config
	closed atomic.Bool
}

func New(cfg Config) (Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
		// 重試由 Produce 控制
		MaxAttempts: 1,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka producer error: "+msg, args...)
		}),
		Compression: kafka.Snappy,
	}

	return newProducer(writer, cfg), nil
}

func newProducer(writer messageWriter, cfg Config) *kafkaProducer {
	return &kafkaProducer{writer: writer, cfg: cfg}
}

// Produce 同步發送消息, 會 block 到所有消息都寫入
// 臨時錯誤最多重試 RetryAttempts 次
func (p *kafkaProducer) Produce(ctx context.Context, msgs ...kafka.Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
		}
		err = p.writer.WriteMessages(ctx, msgs...)
		if err == nil {
			return nil
		}
		if !IsTemporaryError(err) {
			break
		}
		if p.cfg.RetryBackoff > 0 && attempt < p.cfg.RetryAttempts {
			select {
			case <-ctx.Done():
				return NewKafkaError("Produce", p.cfg.Topic, ctx.Err())
			case <-time.After(p.cfg.RetryBackoff * time.Duration(attempt+1)):
			}
		}
	}

	return NewKafkaError("Produce", p.cfg.Topic, err)
}

func (p *kafkaProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
