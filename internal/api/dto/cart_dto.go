package dto

import (
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
)

type AddToCartRequest struct {
	ProductID string   `json:"productId" validate:"required,uuid"`
	Quantity  int      `json:"quantity" validate:"required,min=1"`
	Size      string   `json:"size" validate:"required"`
	Color     ColorDTO `json:"color"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type CartItemDTO struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Image     string   `json:"image,omitempty"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Size      string   `json:"size"`
	Color     ColorDTO `json:"color"`
}

type CartDTO struct {
	Items       []CartItemDTO `json:"items"`
	TotalItems  int           `json:"totalItems"`
	TotalAmount float64       `json:"totalAmount"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func NewCartDTO(c *model.Cart) CartDTO {
	dto := CartDTO{
		Items:       make([]CartItemDTO, 0, len(c.Items)),
		TotalItems:  c.TotalItems(),
		TotalAmount: c.TotalAmount().InexactFloat64(),
		UpdatedAt:   c.UpdatedAt,
	}
	for _, item := range c.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     ColorDTO{Name: item.Color.Name, Hex: item.Color.Hex},
		})
	}
	return dto
}
