package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
)

type FavoriteHandler struct {
	favoriteService service.IFavoriteService
}

func NewFavoriteHandler(favoriteService service.IFavoriteService) *FavoriteHandler {
	if favoriteService == nil {
		panic("favoriteService cannot be nil")
	}
	return &FavoriteHandler{favoriteService: favoriteService}
}

// @Summary list favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Router /favorites [get]
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	products, err := h.favoriteService.ListFavorites(r.Context(), payload.UserID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTOs(products), "")
}

// @Summary add favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param productId path string true "product id"
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Failure 400 {object} response.Response "Product already in favorites"
// @Failure 404 {object} response.Response "Product not found"
// @Router /favorites/{productId} [post]
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	productID, err := uuidParam(r, "productId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	products, err := h.favoriteService.AddFavorite(r.Context(), payload.UserID, productID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTOs(products), "Added to favorites")
}

// @Summary remove favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param productId path string true "product id"
// @Success 200 {object} response.Response{data=[]dto.ProductDTO} "success"
// @Failure 404 {object} response.Response "Favorites not found"
// @Router /favorites/{productId} [delete]
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	productID, err := uuidParam(r, "productId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	products, err := h.favoriteService.RemoveFavorite(r.Context(), payload.UserID, productID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTOs(products), "Removed from favorites")
}

// @Summary check favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param productId path string true "product id"
// @Success 200 {object} response.Response{data=dto.FavoriteCheckResponse} "success"
// @Router /favorites/check/{productId} [get]
func (h *FavoriteHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	productID, err := uuidParam(r, "productId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	ok, err := h.favoriteService.IsFavorite(r.Context(), payload.UserID, productID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.FavoriteCheckResponse{IsFavorite: ok}, "")
}
