package util

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRandomDigits(t *testing.T) {
	code, err := RandomDigits(6)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	num := GenerateOrderNumber(now)
	require.Regexp(t, regexp.MustCompile(`^ORD1700000000123[0-9]{4}$`), num)
}

func TestNormalizePaging(t *testing.T) {
	testCases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"2", "5", 2, 5},
		{"-1", "0", 1, 10},
		{"abc", "1000", 1, 100},
	}
	for _, tc := range testCases {
		page, limit := NormalizePaging(tc.page, tc.limit)
		require.Equal(t, tc.wantPage, page)
		require.Equal(t, tc.wantLimit, limit)
	}
	require.Equal(t, 20, Offset(3, 10))
}

func TestGetTokenPayloadFromContext(t *testing.T) {
	require.Nil(t, GetTokenPayloadFromContext(context.Background()))

	payload := token.NewPayload(uuid.New(), "a@b.com", constants.RoleUser, time.Minute)
	ctx := context.WithValue(context.Background(), constants.AuthorizationPayloadKey, payload)
	require.Equal(t, payload, GetTokenPayloadFromContext(ctx))
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hashed)
	require.NoError(t, CheckPassword("secret1", hashed))
	require.Error(t, CheckPassword("wrong", hashed))
}
