package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodUPI    PaymentMethod = "upi"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodOnline, PaymentMethodUPI:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order 建立後不會刪除, 金額與地址皆為下單當下的快照
type Order struct {
	ID                 uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderNumber        string               `gorm:"size:32;not null;uniqueIndex"`
	UserID             uuid.UUID            `gorm:"type:uuid;not null;index:idx_orders_user_created"`
	Items              []OrderItem          `gorm:"foreignKey:OrderID"`
	ShippingAddress    ShippingAddress      `gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod      PaymentMethod        `gorm:"size:10;not null"`
	PaymentStatus      PaymentStatus        `gorm:"size:10;not null;default:pending"`
	ItemsPrice         decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	DeliveryCharge     decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	Gst                decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	Discount           decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount        decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	CouponCode         string               `gorm:"size:32"`
	OrderStatus        OrderStatus          `gorm:"size:20;not null;default:pending;index"`
	StatusHistory      []OrderStatusHistory `gorm:"foreignKey:OrderID"`
	ExpectedMinDays    int                  `gorm:"not null;default:3"`
	ExpectedMaxDays    int                  `gorm:"not null;default:7"`
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time `gorm:"not null;default:now();index:idx_orders_user_created"`
	UpdatedAt          time.Time
}

type ShippingAddress struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Pincode      string
	Country      string
}

func ShippingAddressFrom(a *Address) ShippingAddress {
	return ShippingAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Country:      a.Country,
	}
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Image     string
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Size      string          `gorm:"not null"`
	ColorName string
	ColorHex  string
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory 只允許新增
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    OrderStatus `gorm:"size:20;not null"`
	Note      string
	Timestamp time.Time `gorm:"not null;default:now()"`
}

// StockLine 一筆庫存異動, 扣庫存與回補共用
type StockLine struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int
}

func (o *Order) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, StockLine{ProductID: item.ProductID, Size: item.Size, Quantity: item.Quantity})
	}
	return lines
}

// OrderFilter 使用者訂單查詢
type OrderFilter struct {
	UserID uuid.UUID
	Status OrderStatus
	Page   int
	Limit  int
}

func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
