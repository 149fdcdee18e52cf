package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 購物車階段只存在 redis, 下單後訂單才會寫入 db
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder 扣庫存 訂單 明細 狀態歷程 在同一個交易內完成
// 錯誤:
//   - *StockError: 任一尺寸庫存不足, 整筆回滾
func (r *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	for i := range order.StatusHistory {
		order.StatusHistory[i].OrderID = order.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deductStock(tx, order.StockLines()); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}

func (r *OrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return getOrder(r.db.WithContext(ctx), id, false)
}

func getOrder(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Order, error) {
	var order model.Order
	query := tx.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp ASC, id ASC") })
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *OrderRepo) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("order_status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}

// UpdateOrderStatus 以 SELECT ... FOR UPDATE 鎖定訂單
// mutate 回傳錯誤時整筆回滾, 不會留下任何異動
func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, mutate OrderMutator) (*model.Order, model.OrderStatus, error) {
	var from model.OrderStatus
	var updated *model.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := getOrder(tx, id, true)
		if err != nil {
			return err
		}
		from = order.OrderStatus

		note, err := mutate(order)
		if err != nil {
			return err
		}

		if order.OrderStatus.RestoresStock() && !from.RestoresStock() {
			if err := restoreStock(tx, order.StockLines()); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
			"order_status":        order.OrderStatus,
			"payment_status":      order.PaymentStatus,
			"delivered_at":        order.DeliveredAt,
			"cancelled_at":        order.CancelledAt,
			"cancellation_reason": order.CancellationReason,
			"updated_at":          now,
		}).Error; err != nil {
			return err
		}

		history := model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    order.OrderStatus,
			Note:      note,
			Timestamp: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		order.UpdatedAt = now
		order.StatusHistory = append(order.StatusHistory, history)
		updated = order
		return nil
	})
	if err != nil {
		return nil, from, err
	}
	return updated, from, nil
}
