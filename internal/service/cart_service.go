package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/redis_repo"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
)

type ICartService interface {
	// GetCart 沒有購物車時回傳空的購物車
	GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	// AddToCart 相同商品 尺寸 顏色合併數量
	// 錯誤:
	//   - er.NotFoundCode 404: 商品不存在
	//   - er.BadRequestCode 400: 尺寸不存在或庫存不足
	AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*model.Cart, error)
	// UpdateItem quantity 為 0 時移除該項
	UpdateItem(ctx context.Context, userID uuid.UUID, itemID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID string) (*model.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	// MergeItems 直接併入已組好的項目, 不檢查庫存
	MergeItems(ctx context.Context, userID uuid.UUID, items []model.CartItem) (*model.Cart, error)
}

type AddToCartInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     model.Color
}

type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo db.IProductRepository
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo db.IProductRepository) *CartService {
	if cartRepo == nil {
		panic("cart repository cannot be nil")
	}
	if productRepo == nil {
		panic("product repository cannot be nil")
	}
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func emptyCart(userID uuid.UUID) *model.Cart {
	return &model.Cart{UserID: userID, Items: []model.CartItem{}, UpdatedAt: time.Now().UTC()}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if errors.Is(err, redis_repo.ErrCartNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return cart, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*model.Cart, error) {
	if input.Quantity < 1 {
		return nil, er.Validation(map[string]string{"quantity": "Quantity must be at least 1"})
	}

	product, err := s.productRepo.GetProductByID(ctx, input.ProductID)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, er.New(er.NotFoundCode, "Product not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	if !product.IsActive {
		return nil, er.New(er.NotFoundCode, "Product not found")
	}

	size, ok := product.FindSize(input.Size)
	if !ok || size.Stock < input.Quantity {
		return nil, er.New(er.BadRequestCode, "Insufficient stock")
	}

	cart, err := s.cartRepo.Update(ctx, userID, func(cart *model.Cart) error {
		if idx := cart.FindSameVariant(product.ID, input.Size, input.Color.Name); idx > -1 {
			cart.Items[idx].Quantity += input.Quantity
			return nil
		}
		cart.Items = append(cart.Items, model.CartItem{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.FirstImage(),
			Price:     product.Price,
			Quantity:  input.Quantity,
			Size:      input.Size,
			Color:     input.Color,
		})
		return nil
	})
	return cart, cartError(err)
}

func (s *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, itemID string, quantity int) (*model.Cart, error) {
	if quantity < 0 {
		return nil, er.Validation(map[string]string{"quantity": "Quantity cannot be negative"})
	}
	current, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		idx := current.FindItem(itemID)
		if idx < 0 {
			return nil, er.New(er.NotFoundCode, "Item not found in cart")
		}
		if err := s.checkStock(ctx, current.Items[idx], quantity); err != nil {
			return nil, err
		}
	}

	cart, err := s.cartRepo.Update(ctx, userID, func(cart *model.Cart) error {
		idx := cart.FindItem(itemID)
		if idx < 0 {
			return redis_repo.ErrCartItemNotFound
		}
		if quantity == 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			return nil
		}
		cart.Items[idx].Quantity = quantity
		return nil
	})
	return cart, cartError(err)
}

func (s *CartService) checkStock(ctx context.Context, item model.CartItem, quantity int) error {
	product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
	if errors.Is(err, db.ErrProductNotFound) {
		return er.New(er.NotFoundCode, "Product not found")
	}
	if err != nil {
		return er.Internal(err)
	}
	if size, ok := product.FindSize(item.Size); !ok || size.Stock < quantity {
		return er.New(er.BadRequestCode, "Insufficient stock")
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID string) (*model.Cart, error) {
	if _, err := s.existingCart(ctx, userID); err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.Update(ctx, userID, func(cart *model.Cart) error {
		idx := cart.FindItem(itemID)
		if idx < 0 {
			return redis_repo.ErrCartItemNotFound
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return nil
	})
	return cart, cartError(err)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return nil, er.Internal(err)
	}
	return emptyCart(userID), nil
}

func (s *CartService) MergeItems(ctx context.Context, userID uuid.UUID, items []model.CartItem) (*model.Cart, error) {
	cart, err := s.cartRepo.Update(ctx, userID, func(cart *model.Cart) error {
		for _, item := range items {
			if idx := cart.FindSameVariant(item.ProductID, item.Size, item.Color.Name); idx > -1 {
				cart.Items[idx].Quantity += item.Quantity
				continue
			}
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			cart.Items = append(cart.Items, item)
		}
		return nil
	})
	return cart, cartError(err)
}

func (s *CartService) existingCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if errors.Is(err, redis_repo.ErrCartNotFound) {
		return nil, er.New(er.NotFoundCode, "Cart not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return cart, nil
}

func cartError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis_repo.ErrCartItemNotFound):
		return er.New(er.NotFoundCode, "Item not found in cart")
	case errors.Is(err, redis_repo.ErrCartConflict):
		return er.New(er.ConflictCode, "Cart was updated by another request, please retry")
	default:
		return er.As(err)
	}
}
