package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/pkg/util"
)

type IOTPService interface {
	// Issue 產生新的 OTP 並使同 email 同 type 的舊 OTP 失效
	Issue(ctx context.Context, email string, otpType constants.OTPType) (string, error)
	// Verify 成功時 OTP 即被標記為已使用
	// 錯誤:
	//   - er.BadRequestCode 400: OTP 不存在 已使用 或已過期
	Verify(ctx context.Context, email string, otpType constants.OTPType, code string) error
	// Check 與 Verify 相同但不消耗 OTP
	Check(ctx context.Context, email string, otpType constants.OTPType, code string) error
}

type OTPService struct {
	otpRepo db.IOTPRepository
	now     func() time.Time
}

func NewOTPService(otpRepo db.IOTPRepository) *OTPService {
	if otpRepo == nil {
		panic("otp repository cannot be nil")
	}
	return &OTPService{otpRepo: otpRepo, now: time.Now}
}

func (s *OTPService) Issue(ctx context.Context, email string, otpType constants.OTPType) (string, error) {
	code, err := util.RandomDigits(constants.OTPLength)
	if err != nil {
		return "", er.Internal(err)
	}
	now := s.now().UTC()
	otp := &model.OTP{
		Email:     email,
		Code:      code,
		Type:      otpType,
		ExpiresAt: now.Add(constants.OTPExpiresAfter),
		CreatedAt: now,
	}
	if err := s.otpRepo.ReplaceOTP(ctx, otp); err != nil {
		return "", er.Internal(err)
	}
	return code, nil
}

func (s *OTPService) Verify(ctx context.Context, email string, otpType constants.OTPType, code string) error {
	_, err := s.otpRepo.ConsumeOTP(ctx, email, otpType, code, s.now().UTC())
	return otpError(err)
}

func (s *OTPService) Check(ctx context.Context, email string, otpType constants.OTPType, code string) error {
	_, err := s.otpRepo.FindValidOTP(ctx, email, otpType, code, s.now().UTC())
	return otpError(err)
}

func otpError(err error) error {
	if errors.Is(err, db.ErrOTPNotFound) {
		return er.New(er.BadRequestCode, "Invalid or expired OTP")
	}
	if err != nil {
		return er.Internal(err)
	}
	return nil
}
