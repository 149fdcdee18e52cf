package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

func productQuery(r *http.Request) service.ProductQuery {
	q := r.URL.Query()
	return service.ProductQuery{
		Category: q.Get("category"),
		Gender:   q.Get("gender"),
		Brand:    q.Get("brand"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Size:     q.Get("size"),
		Color:    q.Get("color"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
}

func writeProductPage(w http.ResponseWriter, page *service.ProductPage) {
	response.PagedJSON(w, dto.NewProductDTOs(page.Products), response.NewPagination(page.Page, page.Limit, page.Total))
}

// @Summary list products
// @Tags products
// @Produce json
// @Param category query string false "category slug or id"
// @Param gender query string false "gender"
// @Param brand query string false "brand"
// @Param minPrice query number false "min price"
// @Param maxPrice query number false "max price"
// @Param size query string false "size with stock"
// @Param color query string false "color name"
// @Param search query string false "keyword"
// @Param sort query string false "-createdAt, createdAt, price, -price, -rating"
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Router /products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.productService.ListProducts(r.Context(), productQuery(r))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	writeProductPage(w, page)
}

// @Summary search products
// @Tags products
// @Produce json
// @Param q query string true "keyword"
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Failure 400 {object} response.Response "Search query is required"
// @Router /products/search [get]
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTOs(products), "")
}

// @Summary list products by category
// @Tags products
// @Produce json
// @Param categorySlug path string true "category slug"
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Failure 404 {object} response.Response "Category not found"
// @Router /products/category/{categorySlug} [get]
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	page, err := h.productService.ListByCategory(r.Context(), chi.URLParam(r, "categorySlug"), productQuery(r))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	writeProductPage(w, page)
}

// @Summary get product
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} response.Response{data=dto.ProductDTO} "success"
// @Failure 404 {object} response.Response "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTO(product), "")
}

// @Summary list reviews
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} response.Response{data=[]dto.ReviewDTO} "success"
// @Router /products/{id}/reviews [get]
func (h *ProductHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	reviews, err := h.productService.ListReviews(r.Context(), id)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewReviewDTOs(reviews), "")
}

// @Summary add review
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "product id"
// @Param review body dto.ReviewRequest true "rating and comment"
// @Success 201 {object} response.Response{data=dto.ReviewResponse} "success"
// @Failure 400 {object} response.Response "Product already reviewed"
// @Failure 404 {object} response.Response "Product not found"
// @Router /products/{id}/reviews [post]
func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.ReviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	result, err := h.productService.AddReview(r.Context(), payload.UserID, id, req.Rating, req.Comment)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, dto.ReviewResponse{
		Review:  dto.NewReviewDTO(result.Review),
		Rating:  result.Average,
		Reviews: result.Count,
	}, "Review added successfully")
}

// @Summary create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body dto.ProductRequest true "product"
// @Success 201 {object} response.Response{data=dto.ProductDTO} "success"
// @Failure 400 {object} response.Response "validation failed"
// @Failure 403 {object} response.Response "Admin access required"
// @Router /products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	input := service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Price:       decimal.NewFromFloat(req.Price),
		Gender:      req.Gender,
		CategoryID:  uuid.MustParse(req.CategoryID),
		Images:      req.Images,
		IsFeatured:  req.IsFeatured,
	}
	if req.OriginalPrice != nil {
		v := decimal.NewFromFloat(*req.OriginalPrice)
		input.OriginalPrice = &v
	}
	for _, c := range req.Colors {
		input.Colors = append(input.Colors, c.Model())
	}
	for _, s := range req.Sizes {
		input.Sizes = append(input.Sizes, model.ProductSize{Size: s.Size, Stock: s.Stock})
	}

	product, err := h.productService.CreateProduct(r.Context(), input)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, dto.NewProductDTO(product), "Product created successfully")
}
