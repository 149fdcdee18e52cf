package dto

import (
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
)

type OrderLineRequest struct {
	ProductID string   `json:"productId" validate:"required,uuid"`
	Quantity  int      `json:"quantity" validate:"required,min=1"`
	Size      string   `json:"size" validate:"required"`
	Color     ColorDTO `json:"color"`
}

// CreateOrderRequest items 為空由 service 回傳 "Cart is empty"
type CreateOrderRequest struct {
	Items             []OrderLineRequest `json:"items" validate:"dive"`
	ShippingAddressID string             `json:"shippingAddressId" validate:"required,uuid"`
	PaymentMethod     string             `json:"paymentMethod" validate:"required,oneof=cod online upi"`
	CouponCode        string             `json:"couponCode"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type OrderItemDTO struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Image     string   `json:"image,omitempty"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Size      string   `json:"size"`
	Color     ColorDTO `json:"color"`
}

type ShippingAddressDTO struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
}

type StatusHistoryDTO struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ExpectedDeliveryDTO struct {
	MinDays int `json:"minDays"`
	MaxDays int `json:"maxDays"`
}

type OrderDTO struct {
	ID                 string              `json:"id"`
	OrderNumber        string              `json:"orderNumber"`
	UserID             string              `json:"userId"`
	Items              []OrderItemDTO      `json:"items"`
	ShippingAddress    ShippingAddressDTO  `json:"shippingAddress"`
	PaymentMethod      string              `json:"paymentMethod"`
	PaymentStatus      string              `json:"paymentStatus"`
	ItemsPrice         float64             `json:"itemsPrice"`
	DeliveryCharge     float64             `json:"deliveryCharge"`
	Gst                float64             `json:"gst"`
	Discount           float64             `json:"discount"`
	TotalAmount        float64             `json:"totalAmount"`
	CouponCode         string              `json:"couponCode,omitempty"`
	OrderStatus        string              `json:"orderStatus"`
	StatusHistory      []StatusHistoryDTO  `json:"statusHistory"`
	ExpectedDelivery   ExpectedDeliveryDTO `json:"expectedDelivery"`
	DeliveredAt        *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time          `json:"cancelledAt,omitempty"`
	CancellationReason string              `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func newHistoryDTOs(history []model.OrderStatusHistory) []StatusHistoryDTO {
	result := make([]StatusHistoryDTO, 0, len(history))
	for _, h := range history {
		result = append(result, StatusHistoryDTO{Status: string(h.Status), Note: h.Note, Timestamp: h.Timestamp})
	}
	return result
}

func NewOrderDTO(o *model.Order) OrderDTO {
	dto := OrderDTO{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID.String(),
		Items:       make([]OrderItemDTO, 0, len(o.Items)),
		ShippingAddress: ShippingAddressDTO{
			FullName:     o.ShippingAddress.FullName,
			Phone:        o.ShippingAddress.Phone,
			AddressLine1: o.ShippingAddress.AddressLine1,
			AddressLine2: o.ShippingAddress.AddressLine2,
			City:         o.ShippingAddress.City,
			State:        o.ShippingAddress.State,
			Pincode:      o.ShippingAddress.Pincode,
			Country:      o.ShippingAddress.Country,
		},
		PaymentMethod:      string(o.PaymentMethod),
		PaymentStatus:      string(o.PaymentStatus),
		ItemsPrice:         o.ItemsPrice.InexactFloat64(),
		DeliveryCharge:     o.DeliveryCharge.InexactFloat64(),
		Gst:                o.Gst.InexactFloat64(),
		Discount:           o.Discount.InexactFloat64(),
		TotalAmount:        o.TotalAmount.InexactFloat64(),
		CouponCode:         o.CouponCode,
		OrderStatus:        string(o.OrderStatus),
		StatusHistory:      newHistoryDTOs(o.StatusHistory),
		ExpectedDelivery:   ExpectedDeliveryDTO{MinDays: o.ExpectedMinDays, MaxDays: o.ExpectedMaxDays},
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     ColorDTO{Name: item.ColorName, Hex: item.ColorHex},
		})
	}
	return dto
}

func NewOrderDTOs(orders []model.Order) []OrderDTO {
	result := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		result = append(result, NewOrderDTO(&orders[i]))
	}
	return result
}

type TrackingDTO struct {
	OrderNumber      string              `json:"orderNumber"`
	CurrentStatus    string              `json:"currentStatus"`
	StatusHistory    []StatusHistoryDTO  `json:"statusHistory"`
	ExpectedDelivery ExpectedDeliveryDTO `json:"expectedDelivery"`
	DeliveredAt      *time.Time          `json:"deliveredAt,omitempty"`
	OrderedAt        time.Time           `json:"orderedAt"`
}

func NewTrackingDTO(t *service.OrderTracking) TrackingDTO {
	return TrackingDTO{
		OrderNumber:      t.OrderNumber,
		CurrentStatus:    string(t.CurrentStatus),
		StatusHistory:    newHistoryDTOs(t.StatusHistory),
		ExpectedDelivery: ExpectedDeliveryDTO{MinDays: t.ExpectedMinDays, MaxDays: t.ExpectedMaxDays},
		DeliveredAt:      t.DeliveredAt,
		OrderedAt:        t.OrderedAt,
	}
}
