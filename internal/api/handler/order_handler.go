package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// @Summary create order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body dto.CreateOrderRequest true "items, address, payment method and coupon"
// @Success 201 {object} response.Response{data=dto.OrderDTO} "success"
// @Failure 400 {object} response.Response "Cart is empty or insufficient stock"
// @Failure 404 {object} response.Response "Shipping address or product not found"
// @Router /order/create [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	input := service.CreateOrderInput{
		Items:             make([]service.OrderLineInput, 0, len(req.Items)),
		ShippingAddressID: uuid.MustParse(req.ShippingAddressID),
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		CouponCode:        req.CouponCode,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderLineInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color.Model(),
		})
	}

	order, err := h.orderService.CreateOrder(r.Context(), payload.UserID, input)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, dto.NewOrderDTO(order), "Order placed successfully")
}

// @Summary my orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "order status"
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} response.Response{data=[]dto.OrderDTO} "success"
// @Router /order/my-orders [get]
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	page, err := h.orderService.GetMyOrders(r.Context(), payload.UserID, r.URL.Query().Get("status"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.PagedJSON(w, dto.NewOrderDTOs(page.Orders), response.NewPagination(page.Page, page.Limit, page.Total))
}

// @Summary get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "order id"
// @Success 200 {object} response.Response{data=dto.OrderDTO} "success"
// @Failure 403 {object} response.Response "Not authorized to view this order"
// @Failure 404 {object} response.Response "Order not found"
// @Router /order/{orderId} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requester, err := currentRequester(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id, err := uuidParam(r, "orderId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	order, err := h.orderService.GetOrder(r.Context(), requester, id)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewOrderDTO(order), "")
}

// @Summary cancel order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "order id"
// @Param reason body dto.CancelOrderRequest false "reason"
// @Success 200 {object} response.Response{data=dto.OrderDTO} "success"
// @Failure 400 {object} response.Response "Cannot cancel order with status"
// @Failure 403 {object} response.Response "Not authorized to cancel this order"
// @Router /order/{orderId}/cancel [put]
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	requester, err := currentRequester(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id, err := uuidParam(r, "orderId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.CancelOrderRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			response.ErrorJSON(w, err)
			return
		}
	}

	order, err := h.orderService.CancelOrder(r.Context(), requester, id, req.Reason)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewOrderDTO(order), "Order cancelled successfully")
}

// @Summary update order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "order id"
// @Param status body dto.UpdateOrderStatusRequest true "next status and note"
// @Success 200 {object} response.Response{data=dto.OrderDTO} "success"
// @Failure 400 {object} response.Response "illegal transition"
// @Failure 403 {object} response.Response "Admin access required"
// @Router /order/{orderId}/status [put]
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "orderId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), id, model.OrderStatus(req.Status), req.Note)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewOrderDTO(order), "Order status updated")
}

// @Summary track order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "order id"
// @Success 200 {object} response.Response{data=dto.TrackingDTO} "success"
// @Failure 403 {object} response.Response "Not authorized to track this order"
// @Router /order/{orderId}/track [get]
func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	requester, err := currentRequester(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id, err := uuidParam(r, "orderId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	tracking, err := h.orderService.TrackOrder(r.Context(), requester, id)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewTrackingDTO(tracking), "")
}

// @Summary reorder
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "order id"
// @Success 200 {object} response.Response{data=dto.CartDTO} "success"
// @Failure 403 {object} response.Response "Not authorized"
// @Router /order/{orderId}/reorder [post]
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	requester, err := currentRequester(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id, err := uuidParam(r, "orderId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	cart, err := h.orderService.Reorder(r.Context(), requester, id)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewCartDTO(cart), "Items added to cart")
}
