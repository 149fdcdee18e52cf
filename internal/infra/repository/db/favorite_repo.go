package db

import (
	"context"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
)

type FavoriteRepo struct {
	db *DbDao
}

func NewFavoriteRepo(db *DbDao) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

func (r *FavoriteRepo) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Create(&model.Favorite{UserID: userID, ProductID: productID}).Error
	if isDuplicateKey(err) {
		return ErrFavoriteExists
	}
	return err
}

func (r *FavoriteRepo) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepo) ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Sizes").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}

func (r *FavoriteRepo) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}
