package token

import (
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/google/uuid"
	"github.com/o1egl/paseto"
	"golang.org/x/crypto/chacha20poly1305"
)

type Maker interface {
	CreateToken(userID uuid.UUID, email string, role constants.UserRole, duration time.Duration) (string, *Payload, error)
	VertifyToken(token string) (*Payload, error)
}

// PasetoMaker paseto v2 local, 對稱金鑰加密
type PasetoMaker struct {
	paseto       *paseto.V2
	symmetricKey []byte
}

func NewPasetoMaker(symmetricKey string) (*PasetoMaker, error) {
	if len(symmetricKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be exactly %d characters", chacha20poly1305.KeySize)
	}
	return &PasetoMaker{
		paseto:       paseto.NewV2(),
		symmetricKey: []byte(symmetricKey),
	}, nil
}

func (m *PasetoMaker) CreateToken(userID uuid.UUID, email string, role constants.UserRole, duration time.Duration) (string, *Payload, error) {
	payload := NewPayload(userID, email, role, duration)
	token, err := m.paseto.Encrypt(m.symmetricKey, payload, nil)
	if err != nil {
		return "", nil, err
	}
	return token, payload, nil
}

func (m *PasetoMaker) VertifyToken(token string) (*Payload, error) {
	payload := &Payload{}
	if err := m.paseto.Decrypt(token, m.symmetricKey, payload, nil); err != nil {
		return nil, ErrInvalidToken
	}
	if err := payload.Valid(); err != nil {
		return nil, err
	}
	return payload, nil
}
