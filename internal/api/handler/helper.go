package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate 解析 json body 並依 validate tag 驗證
func decodeAndValidate(r *http.Request, req any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return er.New(er.BadRequestCode, "Request body is required")
		}
		return er.Wrap(er.BadRequestCode, "Invalid request body", err)
	}
	return dto.Validate(req)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, er.Newf(er.BadRequestCode, "Invalid %s", name)
	}
	return id, nil
}

// currentPayload 路由已經過 AuthMiddleware, 這裡仍做防呆
func currentPayload(r *http.Request) (*token.Payload, error) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		return nil, er.New(er.UnauthenticatedCode, "Not authorized to access this route")
	}
	return payload, nil
}

func currentRequester(r *http.Request) (service.Requester, error) {
	payload, err := currentPayload(r)
	if err != nil {
		return service.Requester{}, err
	}
	return service.Requester{UserID: payload.UserID, IsAdmin: payload.Role == constants.RoleAdmin}, nil
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
