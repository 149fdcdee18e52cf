package response

import (
	"encoding/json"
	"net/http"

	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/rs/zerolog/log"
)

// Response 所有 api 共用的回應格式
type Response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func WriteJSON(w http.ResponseWriter, status int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func SuccessJSON(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func CreatedJSON(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func PagedJSON(w http.ResponseWriter, data any, pagination *Pagination) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: pagination})
}

// ErrorJSON 依錯誤代碼決定 http status
// 非 AnaError 的錯誤一律回 500, 原始錯誤只寫進 log
func ErrorJSON(w http.ResponseWriter, err error) {
	anaErr := er.As(err)
	if anaErr.Code == er.InternalErrorCode {
		log.Error().Err(err).Msg("internal error")
	}
	WriteJSON(w, int(anaErr.Code), Response{
		Success: false,
		Message: anaErr.Msg,
		Error:   er.ErrStrMap[anaErr.Code],
		Errors:  anaErr.Fields,
	})
}

// ErrorDataJSON 錯誤但仍需附帶資料, 例如 email 尚未驗證
func ErrorDataJSON(w http.ResponseWriter, err error, data any) {
	anaErr := er.As(err)
	WriteJSON(w, int(anaErr.Code), Response{
		Success: false,
		Message: anaErr.Msg,
		Data:    data,
	})
}
