package middleware

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//從header內檢查是否有 request id
		requestId := r.Header.Get(RequestIDHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestId)

		ctx := context.WithValue(r.Context(), constants.RequestIDKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
