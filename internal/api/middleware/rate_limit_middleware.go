package middleware

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/rs/zerolog/log"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewRateLimitMiddleware 依 client ip 限流
// redis 無法使用時放行, 只記錄 log
func NewRateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.ErrorJSON(w, er.New(er.TooManyRequestsCode, "Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP 不能直接讀 RemoteAddr, RealIP 會以 client 可偽造的 header 改寫它
func clientIP(r *http.Request) string {
	if ip := util.GetClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return socketHost(r)
}
