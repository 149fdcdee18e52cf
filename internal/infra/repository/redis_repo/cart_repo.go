package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartConflict     = errors.New("cart was modified concurrently")
)

const (
	cartTTL        = 30 * 24 * time.Hour
	cartMaxRetries = 5
)

// ICartRepository 購物車操作介面
type ICartRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	// Update 以 WATCH 樂觀鎖讀出購物車並套用 fn, 購物車不存在時 fn 收到空購物車
	Update(ctx context.Context, userID uuid.UUID, fn func(cart *model.Cart) error) (*model.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// CartRepo 每個使用者一份 json 文件
type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

func generateCartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (r *CartRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	raw, err := r.CartCache.Get(ctx, generateCartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return decodeCart(raw)
}

func (r *CartRepo) Update(ctx context.Context, userID uuid.UUID, fn func(cart *model.Cart) error) (*model.Cart, error) {
	key := generateCartKey(userID)
	var result *model.Cart

	txf := func(tx *redis.Tx) error {
		cart := &model.Cart{UserID: userID, Items: []model.CartItem{}}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cart, err = decodeCart(raw); err != nil {
				return err
			}
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()

		encoded, err := json.Marshal(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, cartTTL)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for i := 0; i < cartMaxRetries; i++ {
		err := r.CartCache.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrCartConflict
}

func (r *CartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.CartCache.Del(ctx, generateCartKey(userID)).Err()
}

func decodeCart(raw []byte) (*model.Cart, error) {
	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("invalid cart data: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return &cart, nil
}
