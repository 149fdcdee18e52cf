package producer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/segmentio/kafka-go"
)

var (
	ErrProducerClosed = errors.New("producer is closed")
	ErrInvalidConfig  = errors.New("invalid producer config")
)

// KafkaError 代表 Kafka 操作錯誤
type KafkaError struct {
	Operation string
	Topic     string
	Err       error
}

func (e *KafkaError) Error() string {
	return fmt.Sprintf("kafka operation %s on topic %s failed: %v", e.Operation, e.Topic, e.Err)
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func NewKafkaError(operation, topic string, err error) error {
	return &KafkaError{Operation: operation, Topic: topic, Err: err}
}

// IsConnectionError 網路層錯誤, writer 會自行重連
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no route to host")
}

// IsFatalError 不可重試
func IsFatalError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, kafka.TopicAuthorizationFailed) ||
		errors.Is(err, kafka.GroupAuthorizationFailed) ||
		errors.Is(err, kafka.ClusterAuthorizationFailed) ||
		errors.Is(err, kafka.UnknownTopicOrPartition) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "authentication failed") ||
		strings.Contains(errStr, "authorization failed") ||
		strings.Contains(errStr, "invalid topic")
}

// IsTemporaryError 判斷是否為可重試的臨時錯誤
func IsTemporaryError(err error) bool {
	if err == nil || IsFatalError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if IsConnectionError(err) {
		return true
	}
	if errors.Is(err, kafka.LeaderNotAvailable) ||
		errors.Is(err, kafka.NotLeaderForPartition) ||
		errors.Is(err, kafka.RequestTimedOut) ||
		errors.Is(err, kafka.RebalanceInProgress) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "temporary") ||
		strings.Contains(errStr, "retriable") ||
		strings.Contains(errStr, "i/o timeout")
}
