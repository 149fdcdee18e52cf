package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
)

// 驗證是ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.GetTokenPayloadFromContext(r.Context()) == nil {
			response.ErrorJSON(w, er.New(er.UnauthenticatedCode, "Not authorized to access this route"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware 需放在 AuthMiddleware 之後
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := util.GetTokenPayloadFromContext(r.Context())
		if payload == nil {
			response.ErrorJSON(w, er.New(er.UnauthenticatedCode, "Not authorized to access this route"))
			return
		}
		if payload.Role != constants.RoleAdmin {
			response.ErrorJSON(w, er.New(er.UnauthorizedCode, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
