package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	categoryService service.ICategoryService
}

func NewCategoryHandler(categoryService service.ICategoryService) *CategoryHandler {
	if categoryService == nil {
		panic("categoryService cannot be nil")
	}
	return &CategoryHandler{categoryService: categoryService}
}

// @Summary list categories
// @Tags categories
// @Produce json
// @Param gender query string false "male, female or unisex"
// @Success 200 {object} response.Response{data=dto.CategoryListResponse} "success"
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.categoryService.ListCategories(r.Context(), r.URL.Query().Get("gender"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}

	organized := make(map[string]*dto.CategoryGroupDTO, len(list.Organized))
	for gender, group := range list.Organized {
		subs := make(map[string][]dto.CategoryDTO, len(group.Subcategories))
		for parent, categories := range group.Subcategories {
			subs[parent] = dto.NewCategoryDTOs(categories)
		}
		organized[gender] = &dto.CategoryGroupDTO{
			Main:          dto.NewCategoryDTOs(group.Main),
			Subcategories: subs,
		}
	}

	response.SuccessJSON(w, dto.CategoryListResponse{
		Categories: dto.NewCategoryDTOs(list.Categories),
		Organized:  organized,
	}, "")
}

// @Summary get category
// @Tags categories
// @Produce json
// @Param slug path string true "category slug"
// @Success 200 {object} response.Response{data=dto.CategoryDetailResponse} "success"
// @Failure 404 {object} response.Response "Category not found"
// @Router /categories/{slug} [get]
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	detail, err := h.categoryService.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.CategoryDetailResponse{
		Category:      dto.NewCategoryDTO(detail.Category),
		Subcategories: dto.NewCategoryDTOs(detail.Subcategories),
	}, "")
}

// @Summary create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body dto.CategoryRequest true "category"
// @Success 201 {object} response.Response{data=dto.CategoryDTO} "success"
// @Failure 400 {object} response.Response "validation failed"
// @Failure 403 {object} response.Response "Admin access required"
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), service.CategoryInput{
		Name:       req.Name,
		Slug:       req.Slug,
		Gender:     req.Gender,
		ParentSlug: req.ParentSlug,
		Image:      req.Image,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, dto.NewCategoryDTO(category), "Category created successfully")
}
