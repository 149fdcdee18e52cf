package dto

import (
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
)

type ColorDTO struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

func (c ColorDTO) Model() model.Color {
	return model.Color{Name: c.Name, Hex: c.Hex}
}

type CategoryDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Gender     string `json:"gender"`
	ParentSlug string `json:"parentSlug,omitempty"`
	Image      string `json:"image"`
}

func NewCategoryDTO(c *model.Category) CategoryDTO {
	dto := CategoryDTO{
		ID:     c.ID.String(),
		Name:   c.Name,
		Slug:   c.Slug,
		Gender: c.Gender,
		Image:  c.Image,
	}
	if c.ParentSlug != nil {
		dto.ParentSlug = *c.ParentSlug
	}
	return dto
}

func NewCategoryDTOs(categories []model.Category) []CategoryDTO {
	result := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		result = append(result, NewCategoryDTO(&categories[i]))
	}
	return result
}

type CategoryGroupDTO struct {
	Main          []CategoryDTO            `json:"main"`
	Subcategories map[string][]CategoryDTO `json:"subcategories"`
}

type CategoryListResponse struct {
	Categories []CategoryDTO                `json:"categories"`
	Organized  map[string]*CategoryGroupDTO `json:"organized"`
}

type CategoryDetailResponse struct {
	Category      CategoryDTO   `json:"category"`
	Subcategories []CategoryDTO `json:"subcategories,omitempty"`
}

type CategoryRequest struct {
	Name       string `json:"name" validate:"required"`
	Slug       string `json:"slug" validate:"required"`
	Gender     string `json:"gender" validate:"required,oneof=male female unisex"`
	ParentSlug string `json:"parentSlug"`
	Image      string `json:"image" validate:"required"`
}

type SizeDTO struct {
	Size  string `json:"size" validate:"required"`
	Stock int    `json:"stock" validate:"min=0"`
}

type ProductDTO struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Brand         string       `json:"brand,omitempty"`
	Price         float64      `json:"price"`
	OriginalPrice *float64     `json:"originalPrice,omitempty"`
	Gender        string       `json:"gender"`
	Category      *CategoryDTO `json:"category,omitempty"`
	CategoryID    string       `json:"categoryId"`
	Images        []string     `json:"images"`
	Colors        []ColorDTO   `json:"colors"`
	Sizes         []SizeDTO    `json:"sizes"`
	TotalStock    int          `json:"totalStock"`
	Rating        float64      `json:"rating"`
	NumReviews    int          `json:"numReviews"`
	IsFeatured    bool         `json:"isFeatured"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func NewProductDTO(p *model.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Price:       p.Price.InexactFloat64(),
		Gender:      p.Gender,
		CategoryID:  p.CategoryID.String(),
		Images:      p.Images,
		Colors:      make([]ColorDTO, 0, len(p.Colors)),
		Sizes:       make([]SizeDTO, 0, len(p.Sizes)),
		TotalStock:  p.TotalStock,
		Rating:      p.RatingAverage,
		NumReviews:  p.RatingCount,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
	}
	if dto.Images == nil {
		dto.Images = []string{}
	}
	if p.OriginalPrice.Valid {
		v := p.OriginalPrice.Decimal.InexactFloat64()
		dto.OriginalPrice = &v
	}
	if p.Category != nil {
		c := NewCategoryDTO(p.Category)
		dto.Category = &c
	}
	for _, c := range p.Colors {
		dto.Colors = append(dto.Colors, ColorDTO{Name: c.Name, Hex: c.Hex})
	}
	for _, s := range p.Sizes {
		dto.Sizes = append(dto.Sizes, SizeDTO{Size: s.Size, Stock: s.Stock})
	}
	return dto
}

func NewProductDTOs(products []model.Product) []ProductDTO {
	result := make([]ProductDTO, 0, len(products))
	for i := range products {
		result = append(result, NewProductDTO(&products[i]))
	}
	return result
}

type ProductRequest struct {
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description" validate:"required"`
	Brand         string     `json:"brand"`
	Price         float64    `json:"price" validate:"min=0"`
	OriginalPrice *float64   `json:"originalPrice" validate:"omitempty,min=0"`
	Gender        string     `json:"gender" validate:"required,oneof=male female unisex"`
	CategoryID    string     `json:"categoryId" validate:"required,uuid"`
	Images        []string   `json:"images"`
	Colors        []ColorDTO `json:"colors"`
	Sizes         []SizeDTO  `json:"sizes" validate:"dive"`
	IsFeatured    bool       `json:"isFeatured"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ReviewDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewReviewDTO(r *model.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Name:      r.Name,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func NewReviewDTOs(reviews []model.Review) []ReviewDTO {
	result := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		result = append(result, NewReviewDTO(&reviews[i]))
	}
	return result
}

type ReviewResponse struct {
	Review  ReviewDTO `json:"review"`
	Rating  float64   `json:"rating"`
	Reviews int       `json:"numReviews"`
}

type FavoriteCheckResponse struct {
	IsFavorite bool `json:"isFavorite"`
}
