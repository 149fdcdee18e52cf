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

type IUserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	// UpdateProfile 只能修改 username contact gender
	// 錯誤:
	//   - er.BadRequestCode 400: username 或 contact 已被其他使用者使用
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.User, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) ([]model.Address, error)
}

// ProfileInput 空字串代表不修改
type ProfileInput struct {
	Username string
	Contact  string
	Gender   string
}

type AddressInput struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Pincode      string
	Country      string
	IsDefault    bool
}

type UserService struct {
	userRepo    db.IUserRepository
	addressRepo db.IAddressRepository
}

func NewUserService(userRepo db.IUserRepository, addressRepo db.IAddressRepository) *UserService {
	if userRepo == nil {
		panic("user repository cannot be nil")
	}
	if addressRepo == nil {
		panic("address repository cannot be nil")
	}
	return &UserService{userRepo: userRepo, addressRepo: addressRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, er.New(er.NotFoundCode, "User not found")
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username = strings.TrimSpace(input.Username); input.Username != "" {
		user.Username = input.Username
	}
	if input.Contact != "" {
		user.Contact = input.Contact
	}
	if input.Gender != "" {
		user.Gender = input.Gender
	}

	existing, err := s.userRepo.FindConflict(ctx, "", user.Username, user.Contact, user.ID)
	switch {
	case errors.Is(err, db.ErrUserNotFound):
	case err != nil:
		return nil, er.Internal(err)
	case existing.Username == user.Username:
		return nil, er.New(er.BadRequestCode, "Username already taken")
	default:
		return nil, er.New(er.BadRequestCode, "Contact number already registered")
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, er.New(er.BadRequestCode, "Username or contact already in use")
		}
		return nil, er.Internal(err)
	}
	return user, nil
}

func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, er.Internal(err)
	}
	return addresses, nil
}

func (s *UserService) CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*model.Address, error) {
	address := input.toModel()
	address.UserID = userID
	if err := s.addressRepo.CreateAddress(ctx, address); err != nil {
		return nil, er.Internal(err)
	}
	return address, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*model.Address, error) {
	address := input.toModel()
	address.ID = addressID
	address.UserID = userID
	if err := s.addressRepo.UpdateAddress(ctx, address); err != nil {
		return nil, addressError(err)
	}
	updated, err := s.addressRepo.GetAddress(ctx, addressID, userID)
	if err != nil {
		return nil, addressError(err)
	}
	return updated, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return addressError(s.addressRepo.DeleteAddress(ctx, addressID, userID))
}

func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) ([]model.Address, error) {
	if err := s.addressRepo.SetDefaultAddress(ctx, addressID, userID); err != nil {
		return nil, addressError(err)
	}
	return s.ListAddresses(ctx, userID)
}

func addressError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrAddressNotFound) {
		return er.New(er.NotFoundCode, "Address not found")
	}
	return er.Internal(err)
}

func (in AddressInput) toModel() *model.Address {
	country := in.Country
	if country == "" {
		country = "India"
	}
	return &model.Address{
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
		Country:      country,
		IsDefault:    in.IsDefault,
	}
}
