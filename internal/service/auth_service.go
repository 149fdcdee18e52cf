package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmailNotVerified 登入時 email 尚未驗證, handler 需額外回傳 requiresVerification
var ErrEmailNotVerified = er.New(er.UnauthorizedCode, "Email not verified. A new verification OTP has been sent to your email.")

type IAuthService interface {
	// Signup 建立尚未驗證的使用者並寄出 email 驗證碼
	//
	// 錯誤:
	//   - er.BadRequestCode 400: email username contact 已被使用
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	// Login email 密碼登入
	//
	// 錯誤:
	//   - er.UnauthenticatedCode 401: 帳號不存在 密碼錯誤 或帳號停用
	//   - ErrEmailNotVerified 403: email 尚未驗證, 會重新寄出驗證碼
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// VerifyOTP email_verification 類型會將使用者標記為已驗證並回傳新的 token
	// password_reset 類型只檢查, 不會消耗 OTP
	//
	// 錯誤:
	//   - er.BadRequestCode 400: OTP 無效或過期
	//   - er.NotFoundCode 404: 使用者不存在
	VerifyOTP(ctx context.Context, email, code string, otpType constants.OTPType) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string, otpType constants.OTPType) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Contact  string
	Gender   string
}

type AuthResult struct {
	User    *model.User
	Token   string
	Payload *token.Payload
}

type AuthService struct {
	userRepo      db.IUserRepository
	otpService    IOTPService
	mailService   IMailService
	tokenMaker    token.Maker
	tokenDuration time.Duration
}

func NewAuthService(userRepo db.IUserRepository, otpService IOTPService, mailService IMailService, tokenMaker token.Maker, tokenDuration time.Duration) *AuthService {
	if userRepo == nil {
		panic("auth service initialization failed: userRepo cannot be nil")
	}
	if otpService == nil {
		panic("auth service initialization failed: otpService cannot be nil")
	}
	if mailService == nil {
		panic("auth service initialization failed: mailService cannot be nil")
	}
	if tokenMaker == nil {
		panic("auth service initialization failed: tokenMaker cannot be nil")
	}
	return &AuthService{
		userRepo:      userRepo,
		otpService:    otpService,
		mailService:   mailService,
		tokenMaker:    tokenMaker,
		tokenDuration: tokenDuration,
	}
}

func (a *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	if err := a.checkConflict(ctx, input.Email, input.Username, input.Contact); err != nil {
		return nil, err
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, er.Internal(err)
	}

	user := &model.User{
		Username:        input.Username,
		Email:           input.Email,
		Password:        hashed,
		Contact:         input.Contact,
		Gender:          input.Gender,
		Role:            constants.RoleUser,
		IsEmailVerified: false,
		IsActive:        true,
	}
	if err := a.userRepo.CreateUser(ctx, user); err != nil {
		// 與其他註冊同時發生, unique index 擋下
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, er.New(er.BadRequestCode, "User already exists")
		}
		return nil, er.Internal(err)
	}

	a.sendOTP(ctx, user, constants.OTPTypeEmailVerification)

	return a.issueToken(user)
}

func (a *AuthService) checkConflict(ctx context.Context, email, username, contact string) error {
	existing, err := a.userRepo.FindConflict(ctx, email, username, contact, uuid.Nil)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return er.Internal(err)
	}
	switch {
	case existing.Email == email:
		return er.New(er.BadRequestCode, "Email already registered")
	case existing.Username == username:
		return er.New(er.BadRequestCode, "Username already taken")
	case existing.Contact == contact:
		return er.New(er.BadRequestCode, "Contact number already registered")
	default:
		return er.New(er.BadRequestCode, "User already exists")
	}
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, er.New(er.BadRequestCode, "Please provide email and password")
	}

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, er.New(er.UnauthenticatedCode, "Invalid credentials")
	}
	if err != nil {
		return nil, er.Internal(err)
	}

	if !user.IsActive {
		return nil, er.New(er.UnauthenticatedCode, "Account is deactivated. Please contact support.")
	}
	if err := util.CheckPassword(password, user.Password); err != nil {
		return nil, er.New(er.UnauthenticatedCode, "Invalid credentials")
	}

	if !user.IsEmailVerified {
		a.sendOTP(ctx, user, constants.OTPTypeEmailVerification)
		return nil, ErrEmailNotVerified
	}

	return a.issueToken(user)
}

func (a *AuthService) VerifyOTP(ctx context.Context, email, code string, otpType constants.OTPType) (*AuthResult, error) {
	if !constants.IsValidOTPType(string(otpType)) {
		return nil, er.New(er.BadRequestCode, "Invalid OTP type")
	}

	if otpType == constants.OTPTypePasswordReset {
		return nil, a.otpService.Check(ctx, email, otpType, code)
	}

	if err := a.otpService.Verify(ctx, email, otpType, code); err != nil {
		return nil, err
	}

	user, err := a.getUserByEmail(ctx, email, "User not found")
	if err != nil {
		return nil, err
	}
	if err := a.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, er.Internal(err)
	}
	user.IsEmailVerified = true

	return a.issueToken(user)
}

func (a *AuthService) ResendOTP(ctx context.Context, email string, otpType constants.OTPType) error {
	if !constants.IsValidOTPType(string(otpType)) {
		return er.New(er.BadRequestCode, "Invalid OTP type")
	}
	user, err := a.getUserByEmail(ctx, email, "User not found")
	if err != nil {
		return err
	}
	return a.issueAndSendOTP(ctx, user, otpType)
}

func (a *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := a.getUserByEmail(ctx, email, "No user found with this email")
	if err != nil {
		return err
	}
	return a.issueAndSendOTP(ctx, user, constants.OTPTypePasswordReset)
}

func (a *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 6 {
		return er.New(er.BadRequestCode, "Password must be at least 6 characters")
	}
	if err := a.otpService.Verify(ctx, email, constants.OTPTypePasswordReset, code); err != nil {
		return err
	}

	user, err := a.getUserByEmail(ctx, email, "User not found")
	if err != nil {
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return er.Internal(err)
	}
	if err := a.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return er.Internal(err)
	}

	if err := a.mailService.SendPasswordResetSuccess(ctx, user.Email, user.Username); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to send password reset confirmation")
	}
	return nil
}

func (a *AuthService) getUserByEmail(ctx context.Context, email, notFoundMsg string) (*model.User, error) {
	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, er.New(er.NotFoundCode, notFoundMsg)
	}
	if err != nil {
		return nil, er.Internal(err)
	}
	return user, nil
}

// issueAndSendOTP 寄信失敗時回傳錯誤, 使用者主動要求的 OTP 必須確實送達
func (a *AuthService) issueAndSendOTP(ctx context.Context, user *model.User, otpType constants.OTPType) error {
	code, err := a.otpService.Issue(ctx, user.Email, otpType)
	if err != nil {
		return err
	}
	err = a.mailService.SendOTP(ctx, OTPMailData{
		Email:    user.Email,
		UserName: user.Username,
		Code:     code,
		Type:     otpType,
	})
	if err != nil {
		return er.Wrap(er.InternalErrorCode, "Failed to send OTP email", err)
	}
	return nil
}

// sendOTP 註冊與登入流程的附帶動作, 失敗只記 log, 使用者可再呼叫 resend-otp
func (a *AuthService) sendOTP(ctx context.Context, user *model.User, otpType constants.OTPType) {
	if err := a.issueAndSendOTP(ctx, user, otpType); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Str("type", string(otpType)).Msg("failed to send otp")
	}
}

func (a *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	accessToken, payload, err := a.tokenMaker.CreateToken(user.ID, user.Email, user.Role, a.tokenDuration)
	if err != nil {
		return nil, er.Internal(err)
	}
	return &AuthResult{User: user, Token: accessToken, Payload: payload}, nil
}
