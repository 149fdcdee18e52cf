package redis_repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CartRepoTestSuite struct {
	suite.Suite
	mr       *miniredis.Miniredis
	cartRepo *CartRepo
}

func (suite *CartRepoTestSuite) SetupTest() {
	suite.mr = miniredis.RunT(suite.T())
	rdb := redis.NewClient(&redis.Options{Addr: suite.mr.Addr()})
	suite.cartRepo = NewCartRepo(rdb)
}

func TestCartRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CartRepoTestSuite))
}

func addItem(productID uuid.UUID, qty int) func(cart *model.Cart) error {
	return func(cart *model.Cart) error {
		if idx := cart.FindSameVariant(productID, "M", "Red"); idx >= 0 {
			cart.Items[idx].Quantity += qty
			return nil
		}
		cart.Items = append(cart.Items, model.CartItem{
			ID:        uuid.NewString(),
			ProductID: productID,
			Price:     decimal.NewFromInt(100),
			Quantity:  qty,
			Size:      "M",
			Color:     model.Color{Name: "Red"},
		})
		return nil
	}
}

func (suite *CartRepoTestSuite) TestGetMissingCart() {
	_, err := suite.cartRepo.Get(context.Background(), uuid.New())
	assert.ErrorIs(suite.T(), err, ErrCartNotFound)
}

func (suite *CartRepoTestSuite) TestUpdateCreatesAndMerges() {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	_, err := suite.cartRepo.Update(ctx, userID, addItem(productID, 2))
	require.NoError(suite.T(), err)
	cart, err := suite.cartRepo.Update(ctx, userID, addItem(productID, 3))
	require.NoError(suite.T(), err)

	require.Len(suite.T(), cart.Items, 1)
	assert.Equal(suite.T(), 5, cart.Items[0].Quantity)

	got, err := suite.cartRepo.Get(ctx, userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), userID, got.UserID)
	assert.Equal(suite.T(), 5, got.TotalItems())
	assert.True(suite.T(), decimal.NewFromInt(500).Equal(got.TotalAmount()))
	assert.True(suite.T(), suite.mr.TTL(generateCartKey(userID)) > 0)
}

func (suite *CartRepoTestSuite) TestUpdateErrorLeavesCartUntouched() {
	ctx := context.Background()
	userID := uuid.New()
	_, err := suite.cartRepo.Update(ctx, userID, addItem(uuid.New(), 1))
	require.NoError(suite.T(), err)

	boom := errors.New("boom")
	_, err = suite.cartRepo.Update(ctx, userID, func(cart *model.Cart) error {
		cart.Items = nil
		return boom
	})
	require.ErrorIs(suite.T(), err, boom)

	got, err := suite.cartRepo.Get(ctx, userID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got.Items, 1)
}

func (suite *CartRepoTestSuite) TestConcurrentUpdates() {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := suite.cartRepo.Update(ctx, userID, addItem(productID, 1)); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := suite.cartRepo.Get(ctx, userID)
	require.NoError(suite.T(), err)
	// 每個成功的更新都要反映在數量上, 不會互相覆蓋
	assert.Equal(suite.T(), success, got.TotalItems())
	assert.Len(suite.T(), got.Items, 1)
}

func (suite *CartRepoTestSuite) TestClear() {
	ctx := context.Background()
	userID := uuid.New()
	_, err := suite.cartRepo.Update(ctx, userID, addItem(uuid.New(), 1))
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.cartRepo.Clear(ctx, userID))
	_, err = suite.cartRepo.Get(ctx, userID)
	assert.ErrorIs(suite.T(), err, ErrCartNotFound)
}
