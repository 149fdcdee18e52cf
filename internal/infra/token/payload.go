package token

import (
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

type Payload struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Email     string             `json:"email"`
	Role      constants.UserRole `json:"role"`
	IssuedAt  time.Time          `json:"issued_at"`
	ExpiredAt time.Time          `json:"expired_at"`
}

func NewPayload(userID uuid.UUID, email string, role constants.UserRole, duration time.Duration) *Payload {
	now := time.Now().UTC()
	return &Payload{
		ID:        uuid.New(),
		UserID:    userID,
		Email:     email,
		Role:      role,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
	}
}

func (p *Payload) Valid() error {
	if time.Now().UTC().After(p.ExpiredAt) {
		return ErrExpiredToken
	}
	return nil
}

func (p *Payload) IsAdmin() bool {
	return p.Role == constants.RoleAdmin
}
