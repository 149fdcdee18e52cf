package db

import (
	"context"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *DbDao
}

func NewUserRepo(db *DbDao) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	if isDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepo) FindConflict(ctx context.Context, email, username, contact string, excludeID uuid.UUID) (*model.User, error) {
	var user model.User
	query := r.db.WithContext(ctx).
		Where(r.db.Where("email = ?", strings.ToLower(email)).
			Or("username = ?", username).
			Or("contact = ?", contact))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// UpdateProfile 只更新可由使用者修改的欄位
func (r *UserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"username":   user.Username,
			"contact":    user.Contact,
			"gender":     user.Gender,
			"updated_at": time.Now().UTC(),
		})
	if isDuplicateKey(res.Error) {
		return ErrDuplicateKey
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]any{"password": passwordHash})
}

func (r *UserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]any{"is_email_verified": true})
}

func (r *UserRepo) updateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type OTPRepo struct {
	db *DbDao
}

func NewOTPRepo(db *DbDao) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) ReplaceOTP(ctx context.Context, otp *model.OTP) error {
	otp.Email = strings.ToLower(otp.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND type = ?", otp.Email, otp.Type).Delete(&model.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

func (r *OTPRepo) ConsumeOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error) {
	var otps []model.OTP
	res := r.db.WithContext(ctx).Model(&otps).
		Clauses(clause.Returning{}).
		Where("email = ? AND type = ? AND code = ? AND is_used = ? AND expires_at > ?",
			strings.ToLower(email), otpType, code, false, now).
		Update("is_used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(otps) == 0 {
		return nil, ErrOTPNotFound
	}
	return &otps[0], nil
}

func (r *OTPRepo) FindValidOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error) {
	var otp model.OTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND type = ? AND code = ? AND is_used = ? AND expires_at > ?",
			strings.ToLower(email), otpType, code, false, now).
		First(&otp).Error
	if err != nil {
		return nil, notFound(err, ErrOTPNotFound)
	}
	return &otp, nil
}
