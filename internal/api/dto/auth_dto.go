package dto

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Contact  string `json:"contact" validate:"required,numeric,min=10,max=15"`
	Gender   string `json:"gender" validate:"required,oneof=male female other"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Type  string `json:"type" validate:"required,oneof=email_verification password_reset"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"type" validate:"required,oneof=email_verification password_reset"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// AuthResponse 登入 註冊 驗證成功後回傳
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// VerificationRequired email 尚未驗證時附在錯誤回應的 data
type VerificationRequired struct {
	RequiresVerification bool   `json:"requiresVerification"`
	Email                string `json:"email"`
}
