package constants

import "time"

const (
	//分頁
	DefaultPagingSize int = 10
	DefaultPaging     int = 1
	MaxPagingSize     int = 100
	SearchResultLimit int = 20
)

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	ClientIPKey             ContextKey = "client_ip"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// OTP
const (
	OTPLength       = 6
	OTPExpiresAfter = 10 * time.Minute
)

type OTPType string

const (
	OTPTypeEmailVerification OTPType = "email_verification"
	OTPTypePasswordReset     OTPType = "password_reset"
)

func IsValidOTPType(t string) bool {
	switch OTPType(t) {
	case OTPTypeEmailVerification, OTPTypePasswordReset:
		return true
	default:
		return false
	}
}
