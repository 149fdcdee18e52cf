package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart 只存在 redis, 不落地 db
type Cart struct {
	UserID    uuid.UUID  `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        string          `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     Color           `json:"color"`
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// FindItem 回傳 index, 找不到為 -1
func (c *Cart) FindItem(itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// FindSameVariant 相同商品 尺寸 顏色 視為同一項
func (c *Cart) FindSameVariant(productID uuid.UUID, size, colorName string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Size == size && item.Color.Name == colorName {
			return i
		}
	}
	return -1
}
