package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/rs/zerolog"
)

func RecoverMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error().
						Str("request_id", util.GetRequestIDFromContext(r.Context())).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("panic", fmt.Sprintf("%v", rec)).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					response.ErrorJSON(w, er.New(er.InternalErrorCode, er.ErrStrMap[er.InternalErrorCode]))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
