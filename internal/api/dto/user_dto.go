package dto

import (
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
)

type UserDTO struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Contact         string    `json:"contact"`
	Gender          string    `json:"gender"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		Contact:         u.Contact,
		Gender:          u.Gender,
		Role:            string(u.Role),
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

// ProfileRequest 省略的欄位不修改
type ProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=30"`
	Contact  string `json:"contact" validate:"omitempty,numeric,min=10,max=15"`
	Gender   string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type AddressRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required,numeric,min=10,max=15"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Pincode      string `json:"pincode" validate:"required,numeric,len=6"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

type AddressDTO struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

func NewAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:           a.ID.String(),
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
	}
}

func NewAddressDTOs(addresses []model.Address) []AddressDTO {
	result := make([]AddressDTO, 0, len(addresses))
	for i := range addresses {
		result = append(result, NewAddressDTO(&addresses[i]))
	}
	return result
}
