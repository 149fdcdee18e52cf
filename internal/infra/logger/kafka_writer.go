package logger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/infra/producer"
	"github.com/segmentio/kafka-go"
)

var ErrLoggerClosed = errors.New("kafka log writer is closed")

const logBufferSize = 1024

// KafkaLogWriter 實作 io.Writer, 將 zerolog 輸出送到 kafka
// 寫入不會 block 呼叫端, buffer 滿時丟棄並計數
type KafkaLogWriter struct {
	p       producer.Producer
	logId   atomic.Int64
	dropped atomic.Int64
	ch      chan kafka.Message
	// mu 保護 closed 與 close(ch), Write 持讀鎖送出
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewKafkaLogWriter(p producer.Producer) *KafkaLogWriter {
	if p == nil {
		panic("producer cannot be nil")
	}
	kw := &KafkaLogWriter{p: p, ch: make(chan kafka.Message, logBufferSize)}
	kw.wg.Add(1)
	go kw.run()
	return kw
}

func (kw *KafkaLogWriter) run() {
	defer kw.wg.Done()
	for msg := range kw.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := kw.p.Produce(ctx, msg); err != nil {
			kw.dropped.Add(1)
		}
		cancel()
	}
}

func (kw *KafkaLogWriter) Write(p []byte) (n int, err error) {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	if kw.closed {
		return 0, ErrLoggerClosed
	}

	// key 依序遞增, 平均分配到各 partition
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(kw.logId.Add(1)))

	// zerolog 會重用 p
	value := make([]byte, len(p))
	copy(value, p)

	select {
	case kw.ch <- kafka.Message{Key: key, Value: value}:
	default:
		kw.dropped.Add(1)
	}
	return len(p), nil
}

func (kw *KafkaLogWriter) Dropped() int64 {
	return kw.dropped.Load()
}

// Close 送完 buffer 內剩餘的 log 後關閉 producer
func (kw *KafkaLogWriter) Close() error {
	kw.mu.Lock()
	if kw.closed {
		kw.mu.Unlock()
		return nil
	}
	kw.closed = true
	close(kw.ch)
	kw.mu.Unlock()

	kw.wg.Wait()
	return kw.p.Close()
}
