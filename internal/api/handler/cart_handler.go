package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// @Summary get cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Router /cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	cart, err := h.cartService.GetCart(r.Context(), payload.UserID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "")
}

// @Summary add to cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body dto.AddToCartRequest true "item"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 400 {object} response.Response "Insufficient stock"
// @Failure 404 {object} response.Response "Product not found"
// @Router /cart/add [post]
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.AddToCartRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	cart, err := h.cartService.AddToCart(r.Context(), payload.UserID, service.AddToCartInput{
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color.Model(),
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "Item added to cart")
}

// @Summary update cart item
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemId path string true "cart item id"
// @Param quantity body dto.UpdateCartItemRequest true "quantity, 0 removes the item"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 404 {object} response.Response "Item not found in cart"
// @Router /cart/item/{itemId} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.UpdateCartItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	cart, err := h.cartService.UpdateItem(r.Context(), payload.UserID, chi.URLParam(r, "itemId"), *req.Quantity)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "Cart updated")
}

// @Summary remove cart item
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param itemId path string true "cart item id"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 404 {object} response.Response "Item not found in cart"
// @Router /cart/item/{itemId} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	cart, err := h.cartService.RemoveItem(r.Context(), payload.UserID, chi.URLParam(r, "itemId"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "Item removed from cart")
}

// @Summary clear cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Router /cart/clear [delete]
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	cart, err := h.cartService.ClearCart(r.Context(), payload.UserID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "Cart cleared")
}
