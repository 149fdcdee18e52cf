package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
)

var defaultStatusNotes = map[model.OrderStatus]string{
	model.OrderStatusConfirmed:      "Order confirmed",
	model.OrderStatusProcessing:     "Order is being processed",
	model.OrderStatusShipped:        "Order shipped",
	model.OrderStatusOutForDelivery: "Out for delivery",
	model.OrderStatusDelivered:      "Order delivered",
	model.OrderStatusCancelled:      "Cancelled by admin",
	model.OrderStatusReturned:       "Order returned",
}

func (s *OrderService) CancelOrder(ctx context.Context, requester Requester, orderID uuid.UUID, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	order, from, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, func(order *model.Order) (string, error) {
		if order.UserID != requester.UserID && !requester.IsAdmin {
			return "", er.New(er.UnauthorizedCode, "Not authorized to cancel this order")
		}
		if !order.OrderStatus.IsCancellable() {
			return "", er.Newf(er.BadRequestCode, "Cannot cancel order with status: %s", order.OrderStatus)
		}
		note := reason
		if note == "" {
			note = "Cancelled by user"
		}
		applyStatus(order, model.OrderStatusCancelled, reason, s.now().UTC())
		return note, nil
	})
	if err != nil {
		return nil, orderUpdateError(err)
	}

	s.invalidate(ctx, order)
	s.publish(ctx, event.NewOrderCancelledEvent(order, from))
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, note string) (*model.Order, error) {
	if !to.IsValid() {
		return nil, er.Newf(er.BadRequestCode, "Invalid order status: %s", to)
	}
	note = strings.TrimSpace(note)

	var historyNote string
	order, from, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, func(order *model.Order) (string, error) {
		if !order.OrderStatus.CanTransitionTo(to) {
			return "", er.Newf(er.BadRequestCode, "Cannot change order status from %s to %s", order.OrderStatus, to)
		}
		historyNote = note
		if historyNote == "" {
			historyNote = defaultStatusNotes[to]
		}
		applyStatus(order, to, note, s.now().UTC())
		return historyNote, nil
	})
	if err != nil {
		return nil, orderUpdateError(err)
	}

	if to.RestoresStock() {
		s.invalidate(ctx, order)
	}
	if to == model.OrderStatusCancelled {
		s.publish(ctx, event.NewOrderCancelledEvent(order, from))
	} else {
		s.publish(ctx, event.NewOrderStatusChangedEvent(order, from, historyNote))
	}
	return order, nil
}

// applyStatus 套用狀態轉換附帶的欄位異動, 庫存回補由 repo 處理
func applyStatus(order *model.Order, to model.OrderStatus, reason string, now time.Time) {
	order.OrderStatus = to
	switch to {
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
		if order.PaymentMethod == model.PaymentMethodCOD {
			order.PaymentStatus = model.PaymentStatusPaid
		}
	case model.OrderStatusCancelled:
		order.CancelledAt = &now
		order.CancellationReason = reason
		if order.PaymentStatus == model.PaymentStatusPaid {
			order.PaymentStatus = model.PaymentStatusRefunded
		}
	case model.OrderStatusReturned:
		if order.PaymentStatus == model.PaymentStatusPaid {
			order.PaymentStatus = model.PaymentStatusRefunded
		}
	}
}

func orderUpdateError(err error) error {
	var anaErr *er.AnaError
	if errors.As(err, &anaErr) {
		return anaErr
	}
	if errors.Is(err, db.ErrOrderNotFound) {
		return er.New(er.NotFoundCode, "Order not found")
	}
	return er.Wrap(er.InternalErrorCode, er.ErrStrMap[er.InternalErrorCode], fmt.Errorf("update order status: %w", err))
}
