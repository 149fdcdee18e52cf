package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/google/uuid"
)

var categoryGenders = []string{"male", "female", "unisex"}

type ICategoryService interface {
	// ListCategories 回傳清單與依 gender 及 parent 分組後的結果
	ListCategories(ctx context.Context, gender string) (*CategoryList, error)
	// GetCategory 主分類會一併回傳子分類
	GetCategory(ctx context.Context, slug string) (*CategoryDetail, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
}

type CategoryGroup struct {
	Main          []model.Category
	Subcategories map[string][]model.Category
}

type CategoryList struct {
	Categories []model.Category
	Organized  map[string]*CategoryGroup
}

type CategoryDetail struct {
	Category      *model.Category
	Subcategories []model.Category
}

type CategoryInput struct {
	Name       string
	Slug       string
	Gender     string
	ParentSlug string
	Image      string
}

type CategoryService struct {
	categoryRepo db.ICategoryRepository
}

func NewCategoryService(categoryRepo db.ICategoryRepository) *CategoryService {
	if categoryRepo == nil {
		panic("category repository cannot be nil")
	}
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) ListCategories(ctx context.Context, gender string) (*CategoryList, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, gender)
	if err != nil {
		return nil, er.Internal(err)
	}
	return &CategoryList{Categories: categories, Organized: organizeCategories(categories)}, nil
}

func organizeCategories(categories []model.Category) map[string]*CategoryGroup {
	organized := make(map[string]*CategoryGroup, len(categoryGenders))
	for _, g := range categoryGenders {
		organized[g] = &CategoryGroup{Main: []model.Category{}, Subcategories: map[string][]model.Category{}}
	}
	for _, c := range categories {
		group, ok := organized[c.Gender]
		if !ok {
			continue
		}
		if c.IsMain() {
			group.Main = append(group.Main, c)
			continue
		}
		group.Subcategories[*c.ParentSlug] = append(group.Subcategories[*c.ParentSlug], c)
	}
	return organized
}

func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*CategoryDetail, error) {
	category, err := s.categoryRepo.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, db.ErrCategoryNotFound) {
		return nil, er.New(er.NotFoundCode, "Category not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}

	detail := &CategoryDetail{Category: category, Subcategories: []model.Category{}}
	if category.IsMain() {
		subs, err := s.categoryRepo.ListSubcategories(ctx, category.Slug)
		if err != nil {
			return nil, er.Internal(err)
		}
		detail.Subcategories = subs
	}
	return detail, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	category := &model.Category{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(input.Name),
		Slug:     strings.ToLower(strings.TrimSpace(input.Slug)),
		Gender:   input.Gender,
		Image:    input.Image,
		IsActive: true,
	}
	if parent := strings.ToLower(strings.TrimSpace(input.ParentSlug)); parent != "" {
		if _, err := s.categoryRepo.GetCategoryBySlug(ctx, parent); err != nil {
			if errors.Is(err, db.ErrCategoryNotFound) {
				return nil, er.New(er.BadRequestCode, "Parent category not found")
			}
			return nil, er.Internal(err)
		}
		category.ParentSlug = &parent
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, er.New(er.BadRequestCode, "Category slug already exists")
		}
		return nil, er.Internal(err)
	}
	return category, nil
}
