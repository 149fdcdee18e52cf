package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IProductService interface {
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
	// SearchProducts 最多回傳 constants.SearchResultLimit 筆
	// 錯誤:
	//   - er.BadRequestCode 400: q 為空
	SearchProducts(ctx context.Context, q string) ([]model.Product, error)
	// ListByCategory 錯誤:
	//   - er.NotFoundCode 404: 分類不存在
	ListByCategory(ctx context.Context, slug string, query ProductQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
	// AddReview 每個使用者對同一商品只能評論一次
	// 錯誤:
	//   - er.BadRequestCode 400: rating 不在 1~5 或已評論過
	//   - er.NotFoundCode 404: 商品不存在
	AddReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*ReviewResult, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
}

// ProductQuery query string 原始值, 由 service 解析
type ProductQuery struct {
	Category string
	Gender   string
	Brand    string
	MinPrice string
	MaxPrice string
	Size     string
	Color    string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []model.Product
	Page     int
	Limit    int
	Total    int64
}

type ReviewResult struct {
	Review  *model.Review
	Average float64
	Count   int
}

type ProductInput struct {
	Name          string
	Description   string
	Brand         string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Gender        string
	CategoryID    uuid.UUID
	Images        []string
	Colors        []model.Color
	Sizes         []model.ProductSize
	IsFeatured    bool
}

type ProductService struct {
	productRepo  db.IProductRepository
	categoryRepo db.ICategoryRepository
	userRepo     db.IUserRepository
}

func NewProductService(productRepo db.IProductRepository, categoryRepo db.ICategoryRepository, userRepo db.IUserRepository) *ProductService {
	if productRepo == nil {
		panic("product repository cannot be nil")
	}
	if categoryRepo == nil {
		panic("category repository cannot be nil")
	}
	if userRepo == nil {
		panic("user repository cannot be nil")
	}
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo, userRepo: userRepo}
}

func (s *ProductService) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	filter, err := s.buildFilter(ctx, query)
	if errors.Is(err, db.ErrCategoryNotFound) {
		return &ProductPage{Products: []model.Product{}, Page: filter.Page, Limit: filter.Limit}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *ProductService) ListByCategory(ctx context.Context, slug string, query ProductQuery) (*ProductPage, error) {
	category, err := s.categoryRepo.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, db.ErrCategoryNotFound) {
		return nil, er.New(er.NotFoundCode, "Category not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}

	page, limit := normalizePage(query.Page, query.Limit)
	return s.list(ctx, model.ProductFilter{
		CategoryID: &category.ID,
		Sort:       query.Sort,
		Page:       page,
		Limit:      limit,
	})
}

func (s *ProductService) list(ctx context.Context, filter model.ProductFilter) (*ProductPage, error) {
	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, er.Internal(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return &ProductPage{Products: products, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

// buildFilter category 可以是 id 或 slug, slug 不存在時回傳 db.ErrCategoryNotFound
func (s *ProductService) buildFilter(ctx context.Context, q ProductQuery) (model.ProductFilter, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	filter := model.ProductFilter{
		Gender: q.Gender,
		Brand:  q.Brand,
		Size:   q.Size,
		Color:  strings.TrimSpace(q.Color),
		Search: strings.TrimSpace(q.Search),
		Sort:   q.Sort,
		Page:   page,
		Limit:  limit,
	}

	fields := map[string]string{}
	if q.MinPrice != "" {
		v, err := decimal.NewFromString(q.MinPrice)
		if err != nil {
			fields["minPrice"] = "minPrice must be a number"
		} else {
			filter.MinPrice = &v
		}
	}
	if q.MaxPrice != "" {
		v, err := decimal.NewFromString(q.MaxPrice)
		if err != nil {
			fields["maxPrice"] = "maxPrice must be a number"
		} else {
			filter.MaxPrice = &v
		}
	}
	if len(fields) > 0 {
		return filter, er.Validation(fields)
	}

	if q.Category != "" {
		if id, err := uuid.Parse(q.Category); err == nil {
			filter.CategoryID = &id
		} else {
			category, err := s.categoryRepo.GetCategoryBySlug(ctx, q.Category)
			if errors.Is(err, db.ErrCategoryNotFound) {
				return filter, err
			}
			if err != nil {
				return filter, er.Internal(err)
			}
			filter.CategoryID = &category.ID
		}
	}
	return filter, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = constants.DefaultPaging
	}
	if limit < 1 {
		limit = constants.DefaultPagingSize
	}
	if limit > constants.MaxPagingSize {
		limit = constants.MaxPagingSize
	}
	return page, limit
}

func (s *ProductService) SearchProducts(ctx context.Context, q string) ([]model.Product, error) {
	if q = strings.TrimSpace(q); q == "" {
		return nil, er.New(er.BadRequestCode, "Search query is required")
	}
	products, err := s.productRepo.SearchProducts(ctx, q, constants.SearchResultLimit)
	if err != nil {
		return nil, er.Internal(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, er.New(er.NotFoundCode, "Product not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return product, nil
}

func (s *ProductService) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.productRepo.ListReviews(ctx, productID)
	if err != nil {
		return nil, er.Internal(err)
	}
	return reviews, nil
}

func (s *ProductService) AddReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*ReviewResult, error) {
	if rating < 1 || rating > 5 {
		return nil, er.Validation(map[string]string{"rating": "Rating must be between 1 and 5"})
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, er.New(er.NotFoundCode, "User not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}

	review := &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Name:      user.Username,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	average, count, err := s.productRepo.AddReview(ctx, review)
	switch {
	case errors.Is(err, db.ErrProductNotFound):
		return nil, er.New(er.NotFoundCode, "Product not found")
	case errors.Is(err, db.ErrReviewExists):
		return nil, er.New(er.BadRequestCode, "Product already reviewed")
	case err != nil:
		return nil, er.Internal(err)
	}
	return &ReviewResult{Review: review, Average: average, Count: count}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "Product name is required"
	}
	if !input.Price.IsPositive() {
		fields["price"] = "Price must be greater than 0"
	}
	seen := map[string]bool{}
	for _, size := range input.Sizes {
		if size.Stock < 0 {
			fields["sizes"] = "Stock cannot be negative"
		}
		if seen[size.Size] {
			fields["sizes"] = "Duplicate size " + size.Size
		}
		seen[size.Size] = true
	}
	if len(fields) > 0 {
		return nil, er.Validation(fields)
	}

	if _, err := s.categoryRepo.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, db.ErrCategoryNotFound) {
			return nil, er.New(er.BadRequestCode, "Category not found")
		}
		return nil, er.Internal(err)
	}

	product := &model.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Brand:       input.Brand,
		Price:       input.Price,
		Gender:      input.Gender,
		CategoryID:  input.CategoryID,
		Images:      input.Images,
		Colors:      input.Colors,
		Sizes:       input.Sizes,
		IsFeatured:  input.IsFeatured,
		IsActive:    true,
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	product.TotalStock = product.SumStock()

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, er.Internal(err)
	}
	return product, nil
}
