package model

import (
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Username        string             `gorm:"size:30;not null;uniqueIndex"`
	Email           string             `gorm:"not null;uniqueIndex"`
	Password        string             `gorm:"not null"`
	Contact         string             `gorm:"size:15;not null;uniqueIndex"`
	Gender          string             `gorm:"size:10;not null"`
	Role            constants.UserRole `gorm:"size:10;not null;default:user"`
	IsEmailVerified bool               `gorm:"not null;default:false"`
	IsActive        bool               `gorm:"not null;default:true"`
	BaseModel
}

func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// OTP 一次性驗證碼, 同 email 同 type 只保留最新一筆
type OTP struct {
	ID        uint              `gorm:"primaryKey;autoIncrement"`
	Email     string            `gorm:"not null;index:idx_otp_email_type"`
	Code      string            `gorm:"size:6;not null"`
	Type      constants.OTPType `gorm:"size:30;not null;index:idx_otp_email_type"`
	ExpiresAt time.Time         `gorm:"not null"`
	IsUsed    bool              `gorm:"not null;default:false"`
	CreatedAt time.Time         `gorm:"not null;default:now()"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) IsValid(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

type Address struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName     string    `gorm:"not null"`
	Phone        string    `gorm:"not null"`
	AddressLine1 string    `gorm:"not null"`
	AddressLine2 string
	City         string `gorm:"not null"`
	State        string `gorm:"not null"`
	Pincode      string `gorm:"not null"`
	Country      string `gorm:"not null;default:India"`
	IsDefault    bool   `gorm:"not null;default:false"`
	BaseModel
}

type Favorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Address) TableName() string {
	return "addresses"
}
