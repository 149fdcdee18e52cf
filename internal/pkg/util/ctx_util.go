package util

import (
	"context"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
)

func GetTokenPayloadFromContext(ctx context.Context) *token.Payload {
	var tokenPayload *token.Payload

	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		tokenPayload, _ = v.(*token.Payload)
	}

	return tokenPayload
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return "unknown"
}

// GetClientIPFromContext 未經過 ClientIPMiddleware 時回傳空字串
func GetClientIPFromContext(ctx context.Context) string {
	v, _ := ctx.Value(constants.ClientIPKey).(string)
	return v
}
