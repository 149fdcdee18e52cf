package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderCreatedEventName       EventType = "OrderCreated"
	OrderCancelledEventName     EventType = "OrderCancelled"
	OrderStatusChangedEventName EventType = "OrderStatusChanged"
)

type Event interface {
	Type() EventType
	GetID() string
	GetAggregateID() string
}

type BaseEvent struct {
	EventID     string    `json:"eventId"`
	AggregateID string    `json:"aggregateId"`
	CreatedAt   time.Time `json:"createdAt"`
	EventType   EventType `json:"eventType"`
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

func (e *BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

func newBaseEvent(orderID uuid.UUID, t EventType) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: orderID.String(),
		CreatedAt:   time.Now().UTC(),
		EventType:   t,
	}
}

type OrderEventItem struct {
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderCreatedEvent struct {
	BaseEvent
	UserID        uuid.UUID        `json:"userId"`
	OrderNumber   string           `json:"orderNumber"`
	Items         []OrderEventItem `json:"items"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	PaymentMethod string           `json:"paymentMethod"`
}

func (e *OrderCreatedEvent) Type() EventType {
	return OrderCreatedEventName
}

type OrderCancelledEvent struct {
	BaseEvent
	UserID      uuid.UUID         `json:"userId"`
	OrderNumber string            `json:"orderNumber"`
	FromStatus  model.OrderStatus `json:"fromStatus"`
	Reason      string            `json:"reason"`
}

func (e *OrderCancelledEvent) Type() EventType {
	return OrderCancelledEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	UserID      uuid.UUID         `json:"userId"`
	OrderNumber string            `json:"orderNumber"`
	FromStatus  model.OrderStatus `json:"fromStatus"`
	ToStatus    model.OrderStatus `json:"toStatus"`
	Note        string            `json:"note"`
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}

func NewOrderCreatedEvent(order *model.Order) *OrderCreatedEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{Name: item.Name, Size: item.Size, Quantity: item.Quantity, Price: item.Price})
	}
	return &OrderCreatedEvent{
		BaseEvent:     newBaseEvent(order.ID, OrderCreatedEventName),
		UserID:        order.UserID,
		OrderNumber:   order.OrderNumber,
		Items:         items,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: string(order.PaymentMethod),
	}
}

func NewOrderCancelledEvent(order *model.Order, from model.OrderStatus) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseEvent:   newBaseEvent(order.ID, OrderCancelledEventName),
		UserID:      order.UserID,
		OrderNumber: order.OrderNumber,
		FromStatus:  from,
		Reason:      order.CancellationReason,
	}
}

func NewOrderStatusChangedEvent(order *model.Order, from model.OrderStatus, note string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent:   newBaseEvent(order.ID, OrderStatusChangedEventName),
		UserID:      order.UserID,
		OrderNumber: order.OrderNumber,
		FromStatus:  from,
		ToStatus:    order.OrderStatus,
		Note:        note,
	}
}

var ErrUnknownEventType = errors.New("unknown event type")

// Decode 依 event type 還原成對應的事件
func Decode(t EventType, data []byte) (Event, error) {
	var evt Event
	switch t {
	case OrderCreatedEventName:
		evt = &OrderCreatedEvent{}
	case OrderCancelledEventName:
		evt = &OrderCancelledEvent{}
	case OrderStatusChangedEventName:
		evt = &OrderStatusChangedEvent{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, t)
	}
	if err := json.Unmarshal(data, evt); err != nil {
		return nil, err
	}
	return evt, nil
}
