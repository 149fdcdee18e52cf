package db

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
)

type CategoryRepo struct {
	db *DbDao
}

func NewCategoryRepo(db *DbDao) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) ListCategories(ctx context.Context, gender string) ([]model.Category, error) {
	var categories []model.Category
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if gender != "" {
		query = query.Where("gender = ?", gender)
	}
	err := query.Order("gender ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", strings.ToLower(slug), true).
		First(&category).Error
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *CategoryRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *CategoryRepo) ListSubcategories(ctx context.Context, parentSlug string) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("parent_slug = ? AND is_active = ?", parentSlug, true).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.Slug = strings.ToLower(category.Slug)
	err := r.db.WithContext(ctx).Create(category).Error
	if isDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}
