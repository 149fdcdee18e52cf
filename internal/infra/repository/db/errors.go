package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrOTPNotFound           = errors.New("otp not found")
	ErrAddressNotFound       = errors.New("address not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrFavoriteExists        = errors.New("favorite already exists")
	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrReviewExists          = errors.New("product already reviewed")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrProductStockNotEnough = errors.New("product stock not enough")
)

// StockError 指出是哪個商品尺寸庫存不足
type StockError struct {
	ProductID uuid.UUID
	Size      string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s", e.ProductID, e.Size)
}

func (e *StockError) Unwrap() error {
	return ErrProductStockNotEnough
}

// notFound 將 gorm.ErrRecordNotFound 轉為 repo 自己的錯誤
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// isDuplicateKey postgres unique_violation
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
