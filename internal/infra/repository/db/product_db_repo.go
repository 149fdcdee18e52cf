package db

import (
	"context"
	"sort"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductDBRepo 商品與各尺寸庫存
// total_stock 一律在異動尺寸庫存的同一個交易內重算
type ProductDBRepo struct {
	db *DbDao
}

func NewProductDBRepo(db *DbDao) *ProductDBRepo {
	return &ProductDBRepo{db: db}
}

func (r *ProductDBRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.TotalStock = product.SumStock()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sizes := product.Sizes
		if err := tx.Omit("Sizes", "Category").Create(product).Error; err != nil {
			return err
		}
		for i := range sizes {
			sizes[i].ProductID = product.ID
		}
		if len(sizes) > 0 {
			if err := tx.Create(&sizes).Error; err != nil {
				return err
			}
		}
		product.Sizes = sizes
		return nil
	})
}

func (r *ProductDBRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("size ASC") }).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &product, nil
}

var productSorts = map[string]string{
	"-createdAt": "products.created_at DESC",
	"createdAt":  "products.created_at ASC",
	"price":      "products.price ASC",
	"-price":     "products.price DESC",
	"-rating":    "products.rating_average DESC",
	"rating":     "products.rating_average ASC",
	"name":       "products.name ASC",
}

func (r *ProductDBRepo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.Product{}), filter).Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productSorts[filter.Sort]
	if !ok {
		order = productSorts["-createdAt"]
	}

	err := query.
		Preload("Sizes").
		Preload("Category").
		Order(order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&products).Error

	return products, total, err
}

func (r *ProductDBRepo) applyFilter(query *gorm.DB, f model.ProductFilter) *gorm.DB {
	query = query.Where("products.is_active = ?", true)
	if f.CategoryID != nil {
		query = query.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.Gender != "" {
		query = query.Where("products.gender = ?", f.Gender)
	}
	if f.Brand != "" {
		query = query.Where("products.brand = ?", f.Brand)
	}
	if f.MinPrice != nil {
		query = query.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.Size != "" {
		query = query.Where("EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.product_id = products.id AND ps.size = ? AND ps.stock > 0)", f.Size)
	}
	if f.Color != "" {
		query = query.Where("EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(products.colors, '[]'::jsonb)) c WHERE c->>'name' ILIKE ?)", likePattern(f.Color))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		query = query.Where("(products.name ILIKE ? OR products.description ILIKE ? OR products.brand ILIKE ?)", p, p, p)
	}
	return query
}

func (r *ProductDBRepo) SearchProducts(ctx context.Context, q string, limit int) ([]model.Product, error) {
	var products []model.Product
	p := likePattern(q)
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Where("is_active = ?", true).
		Where("(name ILIKE ? OR description ILIKE ? OR brand ILIKE ?)", p, p, p).
		Order("rating_average DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *ProductDBRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ProductDBRepo) AddReview(ctx context.Context, review *model.Review) (float64, int, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	var stats struct {
		Average float64
		Count   int
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.Product{}).Where("id = ?", review.ProductID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrProductNotFound
		}

		if err := tx.Create(review).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrReviewExists
			}
			return err
		}

		if err := tx.Model(&model.Review{}).
			Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
			Where("product_id = ?", review.ProductID).
			Scan(&stats).Error; err != nil {
			return err
		}

		return tx.Model(&model.Product{}).
			Where("id = ?", review.ProductID).
			Updates(map[string]any{
				"rating_average": stats.Average,
				"rating_count":   stats.Count,
			}).Error
	})
	if err != nil {
		return 0, 0, err
	}
	return stats.Average, stats.Count, nil
}

// sortedLines 依 product id 與 size 排序, 避免多筆交易交錯鎖定造成 deadlock
func sortedLines(lines []model.StockLine) []model.StockLine {
	sorted := make([]model.StockLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID.String() < sorted[j].ProductID.String()
		}
		return sorted[i].Size < sorted[j].Size
	})
	return sorted
}

// deductStock 條件式扣庫存, 庫存不足時不會更新任何資料列
func deductStock(tx *gorm.DB, lines []model.StockLine) error {
	lines = sortedLines(lines)
	for _, line := range lines {
		res := tx.Model(&model.ProductSize{}).
			Where("product_id = ? AND size = ? AND stock >= ?", line.ProductID, line.Size, line.Quantity).
			Update("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &StockError{ProductID: line.ProductID, Size: line.Size}
		}
	}
	return syncTotalStock(tx, lines)
}

// restoreStock 回補的數量與當初扣除的完全相同
func restoreStock(tx *gorm.DB, lines []model.StockLine) error {
	lines = sortedLines(lines)
	for _, line := range lines {
		res := tx.Model(&model.ProductSize{}).
			Where("product_id = ? AND size = ?", line.ProductID, line.Size).
			Update("stock", gorm.Expr("stock + ?", line.Quantity))
		if res.Error != nil {
			return res.Error
		}
		// 尺寸已被移除時重新建立
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.ProductSize{ProductID: line.ProductID, Size: line.Size, Stock: line.Quantity}).Error; err != nil {
				return err
			}
		}
	}
	return syncTotalStock(tx, lines)
}

func syncTotalStock(tx *gorm.DB, lines []model.StockLine) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		err := tx.Model(&model.Product{}).
			Where("id = ?", line.ProductID).
			Update("total_stock", gorm.Expr("(SELECT COALESCE(SUM(stock), 0) FROM product_sizes WHERE product_id = ?)", line.ProductID)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
