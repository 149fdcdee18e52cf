package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode 直接對應 http status code
type ErrorCode int

const (
	BadRequestCode      ErrorCode = 400
	UnauthenticatedCode ErrorCode = 401
	UnauthorizedCode    ErrorCode = 403
	NotFoundCode        ErrorCode = 404
	ConflictCode        ErrorCode = 409
	TooManyRequestsCode ErrorCode = 429
	InternalErrorCode   ErrorCode = 500
)

var ErrStrMap = map[ErrorCode]string{
	BadRequestCode:      "Bad request",
	UnauthenticatedCode: "Not authorized",
	UnauthorizedCode:    "Access denied",
	NotFoundCode:        "Resource not found",
	ConflictCode:        "Resource already exists",
	TooManyRequestsCode: "Too many requests",
	InternalErrorCode:   "Server error",
}

// AnaError 帶有錯誤代碼的應用程式錯誤
// Msg 會回傳給前端, Err 僅供 log 使用
type AnaError struct {
	Code   ErrorCode
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *AnaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code: %d, msg: %s, err: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

func (e *AnaError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) *AnaError {
	return &AnaError{Code: code, Msg: msg}
}

func Newf(code ErrorCode, format string, args ...any) *AnaError {
	return &AnaError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code ErrorCode, msg string, err error) *AnaError {
	return &AnaError{Code: code, Msg: msg, Err: err}
}

// Internal 包裝非預期錯誤, 對外訊息固定
func Internal(err error) *AnaError {
	return &AnaError{Code: InternalErrorCode, Msg: ErrStrMap[InternalErrorCode], Err: err}
}

// Validation 欄位驗證錯誤
func Validation(fields map[string]string) *AnaError {
	return &AnaError{Code: BadRequestCode, Msg: "Validation failed", Fields: fields}
}

// As 取出 AnaError, 非 AnaError 一律視為 500
func As(err error) *AnaError {
	if err == nil {
		return nil
	}
	var anaErr *AnaError
	if errors.As(err, &anaErr) {
		return anaErr
	}
	return Internal(err)
}

func IsCode(err error, code ErrorCode) bool {
	var anaErr *AnaError
	return errors.As(err, &anaErr) && anaErr.Code == code
}
