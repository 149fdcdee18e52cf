package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupCartService(t *testing.T) (*CartService, *fakeProductRepo, *model.Product) {
	products := newFakeProductRepo()
	product := newTestProduct("Kurta", 450, map[string]int{"M": 3})
	require.NoError(t, products.CreateProduct(context.Background(), product))
	return NewCartService(newTestCartRepo(t), products), products, product
}

func TestCartAddMergesSameVariant(t *testing.T) {
	ctx := context.Background()
	svc, _, product := setupCartService(t)
	userID := uuid.New()

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	black := model.Color{Name: "Black", Hex: "#000000"}
	_, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 1, Size: "M", Color: black})
	require.NoError(t, err)
	cart, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 2, Size: "M", Color: black})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, 3, cart.Items[0].Quantity)
	require.Equal(t, 3, cart.TotalItems())
	require.True(t, decimal.NewFromInt(1350).Equal(cart.TotalAmount()))

	cart, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 1, Size: "M", Color: model.Color{Name: "White"}})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
}

func TestCartAddRejects(t *testing.T) {
	ctx := context.Background()
	svc, _, product := setupCartService(t)
	userID := uuid.New()

	_, err := svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 4, Size: "M"})
	require.True(t, er.IsCode(err, er.BadRequestCode))
	require.Equal(t, "Insufficient stock", er.As(err).Msg)

	_, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 1, Size: "XL"})
	require.True(t, er.IsCode(err, er.BadRequestCode))

	_, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: uuid.New(), Quantity: 1, Size: "M"})
	require.True(t, er.IsCode(err, er.NotFoundCode))

	_, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 0, Size: "M"})
	require.True(t, er.IsCode(err, er.BadRequestCode))
}

func TestCartUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _, product := setupCartService(t)
	userID := uuid.New()

	_, err := svc.UpdateItem(ctx, userID, "missing", 1)
	require.True(t, er.IsCode(err, er.NotFoundCode))
	require.Equal(t, "Cart not found", er.As(err).Msg)

	cart, err := svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, userID, itemID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, cart.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, userID, itemID, 4)
	require.True(t, er.IsCode(err, er.BadRequestCode))

	_, err = svc.UpdateItem(ctx, userID, "missing", 1)
	require.True(t, er.IsCode(err, er.NotFoundCode))
	require.Equal(t, "Item not found in cart", er.As(err).Msg)

	cart, err = svc.UpdateItem(ctx, userID, itemID, 0)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, userID, itemID)
	require.True(t, er.IsCode(err, er.NotFoundCode))

	_, err = svc.AddToCart(ctx, userID, AddToCartInput{ProductID: product.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)
	cart, err = svc.ClearCart(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	cart, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}
