package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getUserID(r *http.Request) string {
	if payload := util.GetTokenPayloadFromContext(r.Context()); payload != nil {
		return payload.UserID.String()
	}
	return uuid.Nil.String()
}

// 記錄request 請求
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := &StatusRecoder{ResponseWriter: w}
			next.ServeHTTP(recoder, r)

			status := recoder.Status()
			evt := logger.Info()
			if status >= http.StatusInternalServerError {
				evt = logger.Error()
			}
			evt.
				Str("request_id", util.GetRequestIDFromContext(r.Context())).
				Str("user_id", getUserID(r)).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}
