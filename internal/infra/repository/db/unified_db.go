package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/google/uuid"
)

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// FindConflict 回傳 email username contact 任一重複的使用者, 沒有重複回傳 ErrUserNotFound
	FindConflict(ctx context.Context, email, username, contact string, excludeID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// IOTPRepository OTP 相關操作介面
type IOTPRepository interface {
	// ReplaceOTP 刪除同 email 同 type 的舊 OTP 後寫入新的
	ReplaceOTP(ctx context.Context, otp *model.OTP) error
	// ConsumeOTP 原子地將符合且未過期的 OTP 標記為已使用
	ConsumeOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error)
	// FindValidOTP 只檢查, 不標記為已使用
	FindValidOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error)
}

// IAddressRepository Address 相關操作介面
type IAddressRepository interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	GetAddress(ctx context.Context, id, userID uuid.UUID) (*model.Address, error)
	CreateAddress(ctx context.Context, address *model.Address) error
	UpdateAddress(ctx context.Context, address *model.Address) error
	DeleteAddress(ctx context.Context, id, userID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, id, userID uuid.UUID) error
}

// ICategoryRepository Category 相關操作介面
type ICategoryRepository interface {
	ListCategories(ctx context.Context, gender string) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListSubcategories(ctx context.Context, parentSlug string) ([]model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
	// AddReview 新增評論並在同一個交易內重算平均分數
	AddReview(ctx context.Context, review *model.Review) (average float64, count int, err error)
}

// IFavoriteRepository Favorite 相關操作介面
type IFavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Favorite, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// OrderMutator 在訂單鎖定狀態下修改訂單, 回傳寫入狀態歷程的備註
type OrderMutator func(order *model.Order) (note string, err error)

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	// CreateOrder 同一個交易內扣庫存並寫入訂單, 任一尺寸庫存不足則整筆回滾
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, int64, error)
	// UpdateOrderStatus 鎖定訂單後套用 mutate, 進入 cancelled 或 returned 時回補庫存
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, mutate OrderMutator) (order *model.Order, from model.OrderStatus, err error)
}
