package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model/event"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/redis_repo"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// 測試用的記憶體版 repo, 行為對齊 db 套件的錯誤語意

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*model.User
	verified []uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (r *fakeUserRepo) FindConflict(ctx context.Context, email, username, contact string, excludeID uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == excludeID {
			continue
		}
		if user.Email == email || user.Username == username || user.Contact == contact {
			copied := *user
			return &copied, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return db.ErrUserNotFound
	}
	user.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return db.ErrUserNotFound
	}
	user.IsEmailVerified = true
	r.verified = append(r.verified, id)
	return nil
}

type fakeOTPRepo struct {
	mu   sync.Mutex
	otps map[string]*model.OTP
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: map[string]*model.OTP{}}
}

func otpKey(email string, t constants.OTPType) string {
	return email + "|" + string(t)
}

func (r *fakeOTPRepo) ReplaceOTP(ctx context.Context, otp *model.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *otp
	r.otps[otpKey(otp.Email, otp.Type)] = &copied
	return nil
}

func (r *fakeOTPRepo) ConsumeOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[otpKey(email, otpType)]
	if !ok || otp.Code != code || !otp.IsValid(now) {
		return nil, db.ErrOTPNotFound
	}
	otp.IsUsed = true
	copied := *otp
	return &copied, nil
}

func (r *fakeOTPRepo) FindValidOTP(ctx context.Context, email string, otpType constants.OTPType, code string, now time.Time) (*model.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[otpKey(email, otpType)]
	if !ok || otp.Code != code || !otp.IsValid(now) {
		return nil, db.ErrOTPNotFound
	}
	copied := *otp
	return &copied, nil
}

func (r *fakeOTPRepo) code(email string, t constants.OTPType) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if otp, ok := r.otps[otpKey(email, t)]; ok {
		return otp.Code
	}
	return ""
}

type fakeAddressRepo struct {
	mu        sync.Mutex
	addresses map[uuid.UUID]*model.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: map[uuid.UUID]*model.Address{}}
}

func (r *fakeAddressRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IsDefault && !result[j].IsDefault })
	return result, nil
}

func (r *fakeAddressRepo) GetAddress(ctx context.Context, id, userID uuid.UUID) (*model.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return nil, db.ErrAddressNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	hasAny := false
	for _, a := range r.addresses {
		if a.UserID == address.UserID {
			hasAny = true
			if address.IsDefault {
				a.IsDefault = false
			}
		}
	}
	if !hasAny {
		address.IsDefault = true
	}
	copied := *address
	r.addresses[address.ID] = &copied
	return nil
}

func (r *fakeAddressRepo) UpdateAddress(ctx context.Context, address *model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.addresses[address.ID]
	if !ok || existing.UserID != address.UserID {
		return db.ErrAddressNotFound
	}
	if address.IsDefault {
		for _, a := range r.addresses {
			if a.UserID == address.UserID {
				a.IsDefault = false
			}
		}
	}
	copied := *address
	r.addresses[address.ID] = &copied
	return nil
}

func (r *fakeAddressRepo) DeleteAddress(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return db.ErrAddressNotFound
	}
	delete(r.addresses, id)
	return nil
}

func (r *fakeAddressRepo) SetDefaultAddress(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.addresses[id]
	if !ok || target.UserID != userID {
		return db.ErrAddressNotFound
	}
	for _, a := range r.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

// fakeProductRepo 同時保存各尺寸庫存, 供 fakeOrderRepo 扣除與回補
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	reviews  map[uuid.UUID][]model.Review
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*model.Product{}, reviews: map[uuid.UUID][]model.Review{}}
}

func cloneProduct(p *model.Product) *model.Product {
	copied := *p
	copied.Sizes = append([]model.ProductSize(nil), p.Sizes...)
	copied.Images = append([]string(nil), p.Images...)
	copied.Colors = append([]model.Color(nil), p.Colors...)
	return &copied
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.TotalStock = product.SumStock()
	for i := range product.Sizes {
		product.Sizes[i].ProductID = product.ID
	}
	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *fakeProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Product
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Gender != "" && p.Gender != filter.Gender {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *cloneProduct(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	start := (filter.Page - 1) * filter.Limit
	if start > len(result) {
		start = len(result)
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *fakeProductRepo) SearchProducts(ctx context.Context, query string, limit int) ([]model.Product, error) {
	products, _, err := r.ListProducts(ctx, model.ProductFilter{Search: query, Page: 1, Limit: limit})
	return products, err
}

func (r *fakeProductRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Review(nil), r.reviews[productID]...), nil
}

func (r *fakeProductRepo) AddReview(ctx context.Context, review *model.Review) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[review.ProductID]
	if !ok {
		return 0, 0, db.ErrProductNotFound
	}
	for _, existing := range r.reviews[review.ProductID] {
		if existing.UserID == review.UserID {
			return 0, 0, db.ErrReviewExists
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	r.reviews[review.ProductID] = append(r.reviews[review.ProductID], *review)
	sum := 0
	for _, rv := range r.reviews[review.ProductID] {
		sum += rv.Rating
	}
	count := len(r.reviews[review.ProductID])
	p.RatingAverage = float64(sum) / float64(count)
	p.RatingCount = count
	return p.RatingAverage, count, nil
}

func (r *fakeProductRepo) stock(id uuid.UUID, size string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock
		}
	}
	return 0
}

func (r *fakeProductRepo) adjustStock(lines []model.StockLine, sign int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sign < 0 {
		for _, line := range lines {
			p, ok := r.products[line.ProductID]
			if !ok {
				return &db.StockError{ProductID: line.ProductID, Size: line.Size}
			}
			size, ok := p.FindSize(line.Size)
			if !ok || size.Stock < line.Quantity {
				return &db.StockError{ProductID: line.ProductID, Size: line.Size}
			}
		}
	}
	for _, line := range lines {
		p := r.products[line.ProductID]
		for i := range p.Sizes {
			if p.Sizes[i].Size == line.Size {
				p.Sizes[i].Stock += sign * line.Quantity
			}
		}
		p.TotalStock = p.SumStock()
	}
	return nil
}

// fakeOrderRepo 以單一 mutex 模擬交易與 row lock
type fakeOrderRepo struct {
	mu       sync.Mutex
	products *fakeProductRepo
	orders   map[uuid.UUID]*model.Order
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{products: products, orders: map[uuid.UUID]*model.Order{}}
}

func cloneOrder(o *model.Order) *model.Order {
	copied := *o
	copied.Items = append([]model.OrderItem(nil), o.Items...)
	copied.StatusHistory = append([]model.OrderStatusHistory(nil), o.StatusHistory...)
	return &copied
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.products.adjustStock(order.StockLines(), -1); err != nil {
		return err
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Order
	for _, o := range r.orders {
		if o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.OrderStatus != filter.Status {
			continue
		}
		result = append(result, *cloneOrder(o))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	start := (filter.Page - 1) * filter.Limit
	if start > len(result) {
		start = len(result)
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, mutate db.OrderMutator) (*model.Order, model.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, "", db.ErrOrderNotFound
	}
	order := cloneOrder(stored)
	from := order.OrderStatus
	note, err := mutate(order)
	if err != nil {
		return nil, from, err
	}
	if order.OrderStatus.RestoresStock() && !from.RestoresStock() {
		if err := r.products.adjustStock(order.StockLines(), 1); err != nil {
			return nil, from, err
		}
	}
	order.StatusHistory = append(order.StatusHistory, model.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    order.OrderStatus,
		Note:      note,
		Timestamp: time.Now().UTC(),
	})
	r.orders[id] = cloneOrder(order)
	return order, from, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) types() []event.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]event.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, ids...)
	return nil
}

type fakeMailService struct {
	mu     sync.Mutex
	otps   []OTPMailData
	resets []string
	orders []OrderMailData
	err    error
}

func (m *fakeMailService) SendOTP(ctx context.Context, data OTPMailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.otps = append(m.otps, data)
	return nil
}

func (m *fakeMailService) SendPasswordResetSuccess(ctx context.Context, email, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, email)
	return nil
}

func (m *fakeMailService) SendOrderNotification(ctx context.Context, data OrderMailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, data)
	return nil
}

func newTestCartRepo(t *testing.T) *redis_repo.CartRepo {
	mr := miniredis.RunT(t)
	return redis_repo.NewCartRepo(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func newTestProduct(name string, price int64, sizes map[string]int) *model.Product {
	p := &model.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Gender:     "men",
		CategoryID: uuid.New(),
		Images:     []string{"https://img.example.com/" + strings.ToLower(name) + ".jpg"},
		Colors:     []model.Color{{Name: "Black", Hex: "#000000"}},
		IsActive:   true,
	}
	for size, stock := range sizes {
		p.Sizes = append(p.Sizes, model.ProductSize{ProductID: p.ID, Size: size, Stock: stock})
	}
	p.TotalStock = p.SumStock()
	return p
}
