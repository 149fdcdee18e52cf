package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 每個使用者最多一個預設地址, 設定預設時同交易內清除其他預設
type AddressRepo struct {
	db *DbDao
}

func NewAddressRepo(db *DbDao) *AddressRepo {
	return &AddressRepo{db: db}
}

func (r *AddressRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&addresses).Error
	return addresses, err
}

func (r *AddressRepo) GetAddress(ctx context.Context, id, userID uuid.UUID) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}
	return &address, nil
}

// CreateAddress 第一筆地址自動成為預設
func (r *AddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Address{}).Where("user_id = ?", address.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
}

func (r *AddressRepo) UpdateAddress(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID); err != nil {
				return err
			}
		}
		res := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Updates(map[string]any{
				"full_name":     address.FullName,
				"phone":         address.Phone,
				"address_line1": address.AddressLine1,
				"address_line2": address.AddressLine2,
				"city":          address.City,
				"state":         address.State,
				"pincode":       address.Pincode,
				"country":       address.Country,
				"is_default":    address.IsDefault,
				"updated_at":    time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
}

func (r *AddressRepo) DeleteAddress(ctx context.Context, id, userID uuid.UUID) error {
	res := softDelete(r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID), &model.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepo) SetDefaultAddress(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		res := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]any{"is_default": true, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
}

func clearDefault(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// softDelete 以單一 UPDATE 寫入 is_deleted 與 deleted_at, 已刪除的資料不會再被命中
func softDelete(tx *gorm.DB, value any) *gorm.DB {
	return tx.Model(value).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": time.Now().UTC(),
	})
}
