package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/producer"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/redis_repo"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultExpectedMinDays = 3
	defaultExpectedMaxDays = 7
)

type IOrderService interface {
	// CreateOrder 驗證 計價 扣庫存 寫入訂單在同一個流程內完成, 任一項目失敗則不會建立訂單
	//
	// 錯誤:
	//   - er.BadRequestCode 400: 沒有項目 付款方式錯誤 尺寸不存在或庫存不足
	//   - er.NotFoundCode 404: 地址或商品不存在
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*model.Order, error)
	GetMyOrders(ctx context.Context, userID uuid.UUID, status string, page, limit int) (*OrderPage, error)
	// GetOrder 錯誤:
	//   - er.NotFoundCode 404: 訂單不存在
	//   - er.UnauthorizedCode 403: 非訂單擁有者
	GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*model.Order, error)
	TrackOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderTracking, error)
	// CancelOrder 回補庫存並記錄狀態歷程
	// 錯誤:
	//   - er.BadRequestCode 400: 訂單狀態為 delivered cancelled returned
	CancelOrder(ctx context.Context, requester Requester, orderID uuid.UUID, reason string) (*model.Order, error)
	// UpdateOrderStatus 依狀態轉換表推進訂單, 不合法的轉換回傳 400
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, note string) (*model.Order, error)
	// Reorder 將舊訂單仍有庫存的項目以目前價格加回購物車
	Reorder(ctx context.Context, requester Requester, orderID uuid.UUID) (*model.Cart, error)
}

// IProductCacheInvalidator 庫存異動後清除商品快取
type IProductCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

type Requester struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     model.Color
}

type CreateOrderInput struct {
	Items             []OrderLineInput
	ShippingAddressID uuid.UUID
	PaymentMethod     model.PaymentMethod
	CouponCode        string
}

type OrderPage struct {
	Orders []model.Order
	Page   int
	Limit  int
	Total  int64
}

type OrderTracking struct {
	OrderNumber     string
	CurrentStatus   model.OrderStatus
	StatusHistory   []model.OrderStatusHistory
	ExpectedMinDays int
	ExpectedMaxDays int
	DeliveredAt     *time.Time
	OrderedAt       time.Time
}

type OrderService struct {
	orderRepo   db.IOrderRepository
	addressRepo db.IAddressRepository
	productRepo db.IProductRepository
	cartRepo    redis_repo.ICartRepository
	cartService ICartService
	publisher   producer.IOrderEventPublisher
	invalidator IProductCacheInvalidator
	now         func() time.Time
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	addressRepo db.IAddressRepository,
	productRepo db.IProductRepository,
	cartRepo redis_repo.ICartRepository,
	cartService ICartService,
	publisher producer.IOrderEventPublisher,
	invalidator IProductCacheInvalidator,
) *OrderService {
	if orderRepo == nil {
		panic("order repository cannot be nil")
	}
	if addressRepo == nil {
		panic("address repository cannot be nil")
	}
	if productRepo == nil {
		panic("product repository cannot be nil")
	}
	if cartRepo == nil {
		panic("cart repository cannot be nil")
	}
	if cartService == nil {
		panic("cart service cannot be nil")
	}
	if publisher == nil {
		panic("event publisher cannot be nil")
	}
	return &OrderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		cartService: cartService,
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, er.New(er.BadRequestCode, "Cart is empty")
	}
	for _, line := range input.Items {
		if line.Quantity < 1 {
			return nil, er.Validation(map[string]string{"quantity": "Quantity must be at least 1"})
		}
	}
	if !input.PaymentMethod.IsValid() {
		return nil, er.New(er.BadRequestCode, "Invalid payment method")
	}

	address, err := s.addressRepo.GetAddress(ctx, input.ShippingAddressID, userID)
	if errors.Is(err, db.ErrAddressNotFound) {
		return nil, er.New(er.NotFoundCode, "Shipping address not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	pricing := PriceOrder(items, input.CouponCode)
	now := s.now().UTC()

	paymentStatus := model.PaymentStatusPaid
	if input.PaymentMethod == model.PaymentMethodCOD {
		paymentStatus = model.PaymentStatusPending
	}

	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     util.GenerateOrderNumber(now),
		UserID:          userID,
		Items:           items,
		ShippingAddress: model.ShippingAddressFrom(address),
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   paymentStatus,
		ItemsPrice:      pricing.ItemsPrice,
		DeliveryCharge:  pricing.DeliveryCharge,
		Gst:             pricing.Gst,
		Discount:        pricing.Discount,
		TotalAmount:     pricing.TotalAmount,
		CouponCode:      pricing.CouponCode,
		OrderStatus:     model.OrderStatusPending,
		StatusHistory: []model.OrderStatusHistory{{
			Status:    model.OrderStatusPending,
			Note:      "Order placed successfully",
			Timestamp: now,
		}},
		ExpectedMinDays: defaultExpectedMinDays,
		ExpectedMaxDays: defaultExpectedMaxDays,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		var stockErr *db.StockError
		if errors.As(err, &stockErr) {
			return nil, er.Newf(er.BadRequestCode, "Insufficient stock for %s in size %s", itemName(items, stockErr.ProductID), stockErr.Size)
		}
		return nil, er.Internal(err)
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart after order")
	}
	s.invalidate(ctx, order)
	s.publish(ctx, event.NewOrderCreatedEvent(order))

	return order, nil
}

// buildItems 先行檢查商品與庫存, 真正的扣庫存在 repo 交易內以條件式更新完成
func (s *OrderService) buildItems(ctx context.Context, lines []OrderLineInput) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, er.Newf(er.NotFoundCode, "Product %s not found", line.ProductID)
		}
		if err != nil {
			return nil, er.Internal(err)
		}
		if !product.IsActive {
			return nil, er.Newf(er.NotFoundCode, "Product %s not found", line.ProductID)
		}

		size, ok := product.FindSize(line.Size)
		if !ok || size.Stock < line.Quantity {
			return nil, er.Newf(er.BadRequestCode, "Insufficient stock for %s in size %s", product.Name, line.Size)
		}

		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.FirstImage(),
			Price:     product.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
			ColorName: line.Color.Name,
			ColorHex:  line.Color.Hex,
		})
	}
	return items, nil
}

func itemName(items []model.OrderItem, productID uuid.UUID) string {
	for _, item := range items {
		if item.ProductID == productID {
			return item.Name
		}
	}
	return productID.String()
}

func (s *OrderService) GetMyOrders(ctx context.Context, userID uuid.UUID, status string, page, limit int) (*OrderPage, error) {
	orderStatus := model.OrderStatus(status)
	if status != "" && !orderStatus.IsValid() {
		return nil, er.Newf(er.BadRequestCode, "Invalid order status: %s", status)
	}
	page, limit = normalizePage(page, limit)

	orders, total, err := s.orderRepo.ListOrders(ctx, model.OrderFilter{
		UserID: userID,
		Status: orderStatus,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, er.Internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return &OrderPage{Orders: orders, Page: page, Limit: limit, Total: total}, nil
}

func (s *OrderService) loadOwnedOrder(ctx context.Context, requester Requester, orderID uuid.UUID, deniedMsg string) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if errors.Is(err, db.ErrOrderNotFound) {
		return nil, er.New(er.NotFoundCode, "Order not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	if order.UserID != requester.UserID && !requester.IsAdmin {
		return nil, er.New(er.UnauthorizedCode, deniedMsg)
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*model.Order, error) {
	return s.loadOwnedOrder(ctx, requester, orderID, "Not authorized to view this order")
}

func (s *OrderService) TrackOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderTracking, error) {
	order, err := s.loadOwnedOrder(ctx, requester, orderID, "Not authorized to track this order")
	if err != nil {
		return nil, err
	}
	return &OrderTracking{
		OrderNumber:     order.OrderNumber,
		CurrentStatus:   order.OrderStatus,
		StatusHistory:   order.StatusHistory,
		ExpectedMinDays: order.ExpectedMinDays,
		ExpectedMaxDays: order.ExpectedMaxDays,
		DeliveredAt:     order.DeliveredAt,
		OrderedAt:       order.CreatedAt,
	}, nil
}

func (s *OrderService) Reorder(ctx context.Context, requester Requester, orderID uuid.UUID) (*model.Cart, error) {
	previous, err := s.loadOwnedOrder(ctx, requester, orderID, "Not authorized")
	if err != nil {
		return nil, err
	}

	items := make([]model.CartItem, 0, len(previous.Items))
	for _, item := range previous.Items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, db.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, er.Internal(err)
		}
		if !product.IsActive {
			continue
		}
		if size, ok := product.FindSize(item.Size); !ok || size.Stock <= 0 {
			continue
		}
		items = append(items, model.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.FirstImage(),
			Price:     product.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     model.Color{Name: item.ColorName, Hex: item.ColorHex},
		})
	}

	if len(items) == 0 {
		return s.cartService.GetCart(ctx, requester.UserID)
	}
	return s.cartService.MergeItems(ctx, requester.UserID, items)
}

func (s *OrderService) invalidate(ctx context.Context, order *model.Order) {
	if s.invalidator == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	if err := s.invalidator.Invalidate(ctx, ids...); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to invalidate product cache")
	}
}

// publish 訂單已寫入, 事件送不出去只記 log
func (s *OrderService) publish(ctx context.Context, evt event.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Error().Err(err).
			Str("event_type", string(evt.Type())).
			Str("order_id", evt.GetAggregateID()).
			Msg(fmt.Sprintf("failed to publish %s", evt.Type()))
	}
}
