package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 軟刪除需同時寫入 IsDeleted 與 DeletedAt, 不要直接呼叫 gorm Delete
type BaseModel struct {
	IsDeleted bool           `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
