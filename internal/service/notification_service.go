package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OrderNotificationHandler 消費訂單事件並寄送通知信
type OrderNotificationHandler struct {
	userRepo    db.IUserRepository
	mailService IMailService
}

func NewOrderNotificationHandler(userRepo db.IUserRepository, mailService IMailService) *OrderNotificationHandler {
	if userRepo == nil {
		panic("user repository cannot be nil")
	}
	if mailService == nil {
		panic("mail service cannot be nil")
	}
	return &OrderNotificationHandler{userRepo: userRepo, mailService: mailService}
}

func (h *OrderNotificationHandler) HandleEvent(ctx context.Context, evt event.Event) error {
	var (
		userID uuid.UUID
		data   OrderMailData
	)

	switch e := evt.(type) {
	case *event.OrderCreatedEvent:
		userID = e.UserID
		data = OrderMailData{
			Headline:    "Order placed",
			OrderNumber: e.OrderNumber,
			Status:      "pending",
			TotalAmount: e.TotalAmount.StringFixed(2),
		}
		for _, item := range e.Items {
			data.Items = append(data.Items, OrderMailItem{
				Name:     item.Name,
				Size:     item.Size,
				Quantity: item.Quantity,
				Price:    item.Price.StringFixed(2),
			})
		}
	case *event.OrderCancelledEvent:
		userID = e.UserID
		data = OrderMailData{
			Headline:    "Order cancelled",
			OrderNumber: e.OrderNumber,
			Status:      "cancelled",
			Note:        e.Reason,
		}
	case *event.OrderStatusChangedEvent:
		userID = e.UserID
		data = OrderMailData{
			Headline:    "Order status updated",
			OrderNumber: e.OrderNumber,
			Status:      string(e.ToStatus),
			Note:        e.Note,
		}
	default:
		return fmt.Errorf("%w: %s", event.ErrUnknownEventType, evt.Type())
	}

	user, err := h.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrUserNotFound) {
		log.Warn().Str("user_id", userID.String()).Str("order_id", evt.GetAggregateID()).Msg("skip notification, user not found")
		return nil
	}
	if err != nil {
		return err
	}

	data.Email = user.Email
	data.UserName = user.Username
	return h.mailService.SendOrderNotification(ctx, data)
}
