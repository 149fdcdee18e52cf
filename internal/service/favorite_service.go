package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
)

type IFavoriteService interface {
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Product, error)
	// AddFavorite 錯誤:
	//   - er.NotFoundCode 404: 商品不存在
	//   - er.BadRequestCode 400: 已在收藏清單
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error)
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type FavoriteService struct {
	favoriteRepo db.IFavoriteRepository
	productRepo  db.IProductRepository
}

func NewFavoriteService(favoriteRepo db.IFavoriteRepository, productRepo db.IProductRepository) *FavoriteService {
	if favoriteRepo == nil {
		panic("favorite repository cannot be nil")
	}
	if productRepo == nil {
		panic("product repository cannot be nil")
	}
	return &FavoriteService{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

func (s *FavoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	favorites, err := s.favoriteRepo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, er.Internal(err)
	}
	products := make([]model.Product, 0, len(favorites))
	for _, f := range favorites {
		// 商品已被刪除的收藏不顯示
		if f.Product != nil {
			products = append(products, *f.Product)
		}
	}
	return products, nil
}

func (s *FavoriteService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error) {
	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, er.New(er.NotFoundCode, "Product not found")
		}
		return nil, er.Internal(err)
	}

	err := s.favoriteRepo.AddFavorite(ctx, userID, productID)
	if errors.Is(err, db.ErrFavoriteExists) {
		return nil, er.New(er.BadRequestCode, "Product already in favorites")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return s.ListFavorites(ctx, userID)
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error) {
	err := s.favoriteRepo.RemoveFavorite(ctx, userID, productID)
	if errors.Is(err, db.ErrFavoriteNotFound) {
		return nil, er.New(er.NotFoundCode, "Favorites not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return s.ListFavorites(ctx, userID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ok, err := s.favoriteRepo.IsFavorite(ctx, userID, productID)
	if err != nil {
		return false, er.Internal(err)
	}
	return ok, nil
}
