package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type Category struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	Slug       string    `gorm:"not null;uniqueIndex"`
	Gender     string    `gorm:"size:10;not null"`
	ParentSlug *string   `gorm:"index"`
	Image      string    `gorm:"not null"`
	IsActive   bool      `gorm:"not null;default:true"`
	BaseModel
}

// IsMain 沒有 parent 的為主分類
func (c *Category) IsMain() bool {
	return c.ParentSlug == nil || *c.ParentSlug == ""
}

type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name          string              `gorm:"not null"`
	Description   string              `gorm:"not null"`
	Brand         string              `gorm:"index"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	OriginalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Gender        string              `gorm:"size:10;not null"`
	CategoryID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Category      *Category           `gorm:"foreignKey:CategoryID"`
	Images        []string            `gorm:"serializer:json;type:jsonb"`
	Colors        []Color             `gorm:"serializer:json;type:jsonb"`
	Sizes         []ProductSize       `gorm:"foreignKey:ProductID"`
	TotalStock    int                 `gorm:"not null;default:0"`
	RatingAverage float64             `gorm:"not null;default:0"`
	RatingCount   int                 `gorm:"not null;default:0"`
	IsFeatured    bool                `gorm:"not null;default:false"`
	IsActive      bool                `gorm:"not null;default:true"`
	BaseModel
}

// ProductSize 每個尺寸各自的庫存, 扣庫存以此表為準
type ProductSize struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Size      string    `gorm:"primaryKey"`
	Stock     int       `gorm:"not null;default:0"`
}

func (p *Product) FindSize(size string) (ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s, true
		}
	}
	return ProductSize{}, false
}

// SumStock 各尺寸庫存總和
func (p *Product) SumStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user"`
	Name      string    `gorm:"not null"`
	Rating    int       `gorm:"not null"`
	Comment   string
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// ProductFilter 商品列表查詢條件, 零值代表不過濾
type ProductFilter struct {
	CategoryID *uuid.UUID
	Gender     string
	Brand      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Size       string
	Color      string
	Search     string
	Sort       string
	Page       int
	Limit      int
}

func (Category) TableName() string {
	return "categories"
}

func (ProductSize) TableName() string {
	return "product_sizes"
}
