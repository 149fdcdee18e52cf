package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{authService: authService}
}

// @Summary signup
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.SignupRequest true "signup info"
// @Success 201 {object} response.Response{data=dto.AuthResponse} "success"
// @Failure 400 {object} response.Response "validation failed or user exists"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	result, err := h.authService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Contact:  req.Contact,
		Gender:   req.Gender,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}

	response.CreatedJSON(w, dto.AuthResponse{
		User:  dto.NewUserDTO(result.User),
		Token: result.Token,
	}, "User registered successfully. Please verify your email with the OTP sent.")
}

// @Summary login
// @Tags auth
// @Accept json
// @Produce json
// @Param credential body dto.LoginRequest true "email and password"
// @Success 200 {object} response.Response{data=dto.AuthResponse} "success"
// @Failure 401 {object} response.Response "Invalid credentials"
// @Failure 403 {object} response.Response{data=dto.VerificationRequired} "Email not verified"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if errors.Is(err, service.ErrEmailNotVerified) {
		response.ErrorDataJSON(w, err, dto.VerificationRequired{RequiresVerification: true, Email: req.Email})
		return
	}
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}

	response.SuccessJSON(w, dto.AuthResponse{
		User:  dto.NewUserDTO(result.User),
		Token: result.Token,
	}, "Login successful")
}

// @Summary verify otp
// @Tags auth
// @Accept json
// @Produce json
// @Param otp body dto.VerifyOTPRequest true "email, otp and type"
// @Success 200 {object} response.Response{data=dto.AuthResponse} "success"
// @Failure 400 {object} response.Response "Invalid or expired OTP"
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	result, err := h.authService.VerifyOTP(r.Context(), email, req.OTP, constants.OTPType(req.Type))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}

	if result == nil {
		response.SuccessJSON(w, nil, "OTP verified successfully")
		return
	}
	response.SuccessJSON(w, dto.AuthResponse{
		User:  dto.NewUserDTO(result.User),
		Token: result.Token,
	}, "Email verified successfully")
}

// @Summary resend otp
// @Tags auth
// @Accept json
// @Produce json
// @Param otp body dto.ResendOTPRequest true "email and type"
// @Success 200 {object} response.Response "success"
// @Failure 404 {object} response.Response "User not found"
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.ResendOTP(r.Context(), email, constants.OTPType(req.Type)); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil, "OTP sent successfully")
}

// @Summary forgot password
// @Tags auth
// @Accept json
// @Produce json
// @Param email body dto.ForgotPasswordRequest true "email"
// @Success 200 {object} response.Response "success"
// @Failure 404 {object} response.Response "No user found with this email"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil, "Password reset OTP sent to your email")
}

// @Summary reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "email, otp and new password"
// @Success 200 {object} response.Response "success"
// @Failure 400 {object} response.Response "Invalid or expired OTP"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.ResetPassword(r.Context(), email, req.OTP, req.NewPassword); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil, "Password reset successful")
}
