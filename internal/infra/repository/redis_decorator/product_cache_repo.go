package redis_decorator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productCacheTTL = 10 * time.Minute

/*
cache aside
讀: 先讀 redis, miss 時讀 db 並回寫
寫: 先寫 db, 再刪除或覆寫 redis
redis 失敗不影響主流程, 只記 log

每個商品另有版本 key, Invalidate 時遞增
回寫前以 WATCH 比對讀 db 之前的版本, 不同代表期間已失效, 放棄回寫
*/
type CacheAsideProductRepo struct {
	db.IProductRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheAsideProductRepo(repo db.IProductRepository, redis *redis.Client) *CacheAsideProductRepo {
	if repo == nil {
		panic("product repository cannot be nil")
	}
	return &CacheAsideProductRepo{IProductRepository: repo, redis: redis, ttl: productCacheTTL}
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func productVersionKey(id uuid.UUID) string {
	return fmt.Sprintf("product:ver:%s", id)
}

var errStaleProduct = errors.New("product cache version changed")

func (p *CacheAsideProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	raw, err := p.redis.Get(ctx, productCacheKey(id)).Bytes()
	if err == nil {
		var product model.Product
		if err := json.Unmarshal(raw, &product); err == nil {
			return &product, nil
		}
		log.Warn().Str("product_id", id.String()).Msg("invalid product cache, reload from db")
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("failed to read product cache")
	}

	// 版本需在讀 db 之前取得
	version, verErr := p.version(ctx, id)
	if verErr != nil {
		log.Warn().Err(verErr).Str("product_id", id.String()).Msg("failed to read product cache version")
	}

	product, err := p.IProductRepository.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if verErr == nil {
		p.set(ctx, product, version)
	}
	return product, nil
}

// version key 不存在時回傳空字串
func (p *CacheAsideProductRepo) version(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := p.redis.Get(ctx, productVersionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (p *CacheAsideProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.CreateProduct(ctx, product); err != nil {
		return err
	}
	// 新建商品不含 Category, 交給下一次讀取回填
	p.del(ctx, product.ID)
	return nil
}

func (p *CacheAsideProductRepo) AddReview(ctx context.Context, review *model.Review) (float64, int, error) {
	average, count, err := p.IProductRepository.AddReview(ctx, review)
	if err != nil {
		return 0, 0, err
	}
	p.del(ctx, review.ProductID)
	return average, count, nil
}

// Invalidate 庫存在其他 repo 異動後呼叫
func (p *CacheAsideProductRepo) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productCacheKey(id))
	}
	_, err := p.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, id := range ids {
			pipe.Incr(ctx, productVersionKey(id))
			// 版本 key 需活得比任何一次 db 讀取久
			pipe.Expire(ctx, productVersionKey(id), 2*p.ttl)
		}
		return nil
	})
	return err
}

// set 只在版本與讀 db 前相同時寫入
func (p *CacheAsideProductRepo) set(ctx context.Context, product *model.Product, version string) {
	encoded, err := json.Marshal(product)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode product cache")
		return
	}

	verKey := productVersionKey(product.ID)
	err = p.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleProduct
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productCacheKey(product.ID), encoded, p.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleProduct), errors.Is(err, redis.TxFailedErr):
		log.Debug().Str("product_id", product.ID.String()).Msg("skip stale product cache write")
	default:
		log.Warn().Err(err).Str("product_id", product.ID.String()).Msg("failed to write product cache")
	}
}

func (p *CacheAsideProductRepo) del(ctx context.Context, id uuid.UUID) {
	if err := p.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("failed to invalidate product cache")
	}
}
