package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/api"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/handler"
	m "github.com/RoyceAzure/lab/ecommerce/internal/api/middleware"
	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	er "github.com/RoyceAzure/lab/ecommerce/internal/pkg/apperror"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// 只實作測試會呼叫到的方法, 其餘呼叫會因 nil interface panic
type stubAuthService struct {
	service.IAuthService
	loginErr error
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &service.AuthResult{User: &model.User{ID: uuid.New(), Email: email}, Token: "token"}, nil
}

type stubCartService struct {
	service.ICartService
	panicOnGet bool
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	if s.panicOnGet {
		panic("boom")
	}
	return &model.Cart{UserID: userID}, nil
}

type stubOrderService struct {
	service.IOrderService
	lastInput   service.CreateOrderInput
	lastUser    uuid.UUID
	getErr      error
	requester   service.Requester
	statusCalls int
}

func (s *stubOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, input service.CreateOrderInput) (*model.Order, error) {
	s.lastUser = userID
	s.lastInput = input
	return &model.Order{
		ID:             uuid.New(),
		OrderNumber:    "ORD-1",
		UserID:         userID,
		PaymentMethod:  input.PaymentMethod,
		PaymentStatus:  model.PaymentStatusPending,
		ItemsPrice:     decimal.NewFromInt(600),
		DeliveryCharge: decimal.Zero,
		Gst:            decimal.NewFromInt(30),
		Discount:       decimal.Zero,
		TotalAmount:    decimal.NewFromInt(630),
		OrderStatus:    model.OrderStatusPending,
	}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, requester service.Requester, orderID uuid.UUID) (*model.Order, error) {
	s.requester = requester
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &model.Order{ID: orderID, UserID: requester.UserID, OrderStatus: model.OrderStatusPending}, nil
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, note string) (*model.Order, error) {
	s.statusCalls++
	return &model.Order{ID: orderID, OrderStatus: to}, nil
}

// stubLimiter perKey > 0 時每個 key 只放行 perKey 次
type stubLimiter struct {
	allow  bool
	err    error
	perKey int
	keys   []string
	hits   map[string]int
}

func (l *stubLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	if l.perKey > 0 {
		if l.hits == nil {
			l.hits = map[string]int{}
		}
		l.hits[key]++
		return l.hits[key] <= l.perKey, nil
	}
	return l.allow, l.err
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

type RouterTestSuite struct {
	suite.Suite
	maker   *token.PasetoMaker
	auth    *stubAuthService
	cart    *stubCartService
	orders  *stubOrderService
	limiter *stubLimiter
	router  *chi.Mux
	userID  uuid.UUID
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	maker, err := token.NewPasetoMaker("01234567890123456789012345678901")
	s.Require().NoError(err)
	s.maker = maker
	s.auth = &stubAuthService{}
	s.cart = &stubCartService{}
	s.orders = &stubOrderService{}
	s.limiter = &stubLimiter{allow: true}
	s.userID = uuid.New()

	server := api.NewServer(
		handler.NewAuthHandler(s.auth),
		handler.NewUserHandler(struct{ service.IUserService }{}),
		handler.NewCategoryHandler(struct{ service.ICategoryService }{}),
		handler.NewProductHandler(struct{ service.IProductService }{}),
		handler.NewCartHandler(s.cart),
		handler.NewFavoriteHandler(struct{ service.IFavoriteService }{}),
		handler.NewOrderHandler(s.orders),
	)
	logger := zerolog.Nop()
	s.router = SetupRouter(server, s.maker, &logger, Options{
		AllowedOrigins: []string{"*"},
		AuthLimiter:    s.limiter,
		TrustedProxies: []string{"10.0.0.0/8"},
	})
}

func (s *RouterTestSuite) bearer(role constants.UserRole) string {
	tk, _, err := s.maker.CreateToken(s.userID, "user@example.com", role, time.Hour)
	s.Require().NoError(err)
	return "Bearer " + tk
}

func (s *RouterTestSuite) do(method, path, body, auth string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *RouterTestSuite) TestHealth() {
	rec, env := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.True(env.Success)
	s.NotEmpty(rec.Header().Get(m.RequestIDHeader))
}

func (s *RouterTestSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(m.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal("req-123", rec.Header().Get(m.RequestIDHeader))
}

func (s *RouterTestSuite) TestUnknownRoute() {
	rec, env := s.do(http.MethodGet, "/api/nothing", "", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.False(env.Success)
}

func (s *RouterTestSuite) TestProtectedRouteWithoutToken() {
	rec, env := s.do(http.MethodGet, "/api/cart", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Not authorized to access this route", env.Message)

	rec, _ = s.do(http.MethodGet, "/api/cart", "", "Bearer not-a-token")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/cart", "", s.bearer(constants.RoleUser))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestAdminOnlyStatusRoute() {
	path := "/api/order/" + uuid.NewString() + "/status"

	rec, env := s.do(http.MethodPut, path, `{"status":"confirmed"}`, s.bearer(constants.RoleUser))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("Admin access required", env.Message)
	s.Zero(s.orders.statusCalls)

	rec, _ = s.do(http.MethodPut, path, `{"status":"confirmed"}`, s.bearer(constants.RoleAdmin))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(1, s.orders.statusCalls)
}

func (s *RouterTestSuite) TestCreateOrder() {
	productID := uuid.New()
	addressID := uuid.New()
	body := `{"items":[{"productId":"` + productID.String() + `","quantity":2,"size":"M","color":{"name":"Red","hex":"#f00"}}],` +
		`"shippingAddressId":"` + addressID.String() + `","paymentMethod":"cod","couponCode":"FIRST20"}`

	rec, env := s.do(http.MethodPost, "/api/order/create", body, s.bearer(constants.RoleUser))
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal("Order placed successfully", env.Message)

	s.Equal(s.userID, s.orders.lastUser)
	s.Equal(addressID, s.orders.lastInput.ShippingAddressID)
	s.Equal(model.PaymentMethodCOD, s.orders.lastInput.PaymentMethod)
	s.Equal("FIRST20", s.orders.lastInput.CouponCode)
	s.Require().Len(s.orders.lastInput.Items, 1)
	s.Equal(productID, s.orders.lastInput.Items[0].ProductID)
	s.Equal(2, s.orders.lastInput.Items[0].Quantity)
	s.Equal("Red", s.orders.lastInput.Items[0].Color.Name)

	var data struct {
		TotalAmount float64 `json:"totalAmount"`
		Gst         float64 `json:"gst"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal(630.0, data.TotalAmount)
	s.Equal(30.0, data.Gst)
}

func (s *RouterTestSuite) TestCreateOrderValidation() {
	body := `{"items":[],"shippingAddressId":"nope","paymentMethod":"cheque"}`
	rec, env := s.do(http.MethodPost, "/api/order/create", body, s.bearer(constants.RoleUser))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(env.Errors, "shippingAddressId")
	s.Contains(env.Errors, "paymentMethod")

	rec, env = s.do(http.MethodPost, "/api/order/create", "", s.bearer(constants.RoleUser))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Request body is required", env.Message)
}

func (s *RouterTestSuite) TestGetOrder() {
	rec, env := s.do(http.MethodGet, "/api/order/not-a-uuid", "", s.bearer(constants.RoleUser))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid orderId", env.Message)

	rec, _ = s.do(http.MethodGet, "/api/order/"+uuid.NewString(), "", s.bearer(constants.RoleAdmin))
	s.Equal(http.StatusOK, rec.Code)
	s.True(s.orders.requester.IsAdmin)
	s.Equal(s.userID, s.orders.requester.UserID)

	s.orders.getErr = er.New(er.UnauthorizedCode, "Not authorized to view this order")
	rec, env = s.do(http.MethodGet, "/api/order/"+uuid.NewString(), "", s.bearer(constants.RoleUser))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("Not authorized to view this order", env.Message)
}

func (s *RouterTestSuite) TestLoginUnverified() {
	s.auth.loginErr = service.ErrEmailNotVerified
	rec, env := s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	s.Equal(http.StatusForbidden, rec.Code)

	var data struct {
		RequiresVerification bool   `json:"requiresVerification"`
		Email                string `json:"email"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.True(data.RequiresVerification)
	s.Equal("a@b.com", data.Email)
}

func (s *RouterTestSuite) TestAuthRateLimit() {
	s.limiter.allow = false
	rec, _ := s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	s.Equal(http.StatusTooManyRequests, rec.Code)

	// redis 故障時放行
	s.limiter.err = errors.New("redis down")
	rec, _ = s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) login(remoteAddr string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec.Code
}

func (s *RouterTestSuite) TestAuthRateLimitIgnoresForwardedHeadersFromClient() {
	s.limiter.perKey = 1

	s.Equal(http.StatusOK, s.login("203.0.113.9:1234", map[string]string{"X-Forwarded-For": "1.1.1.1"}))
	s.Equal(http.StatusTooManyRequests, s.login("203.0.113.9:1234", map[string]string{"X-Forwarded-For": "2.2.2.2"}))
	s.Equal(http.StatusTooManyRequests, s.login("203.0.113.9:1234", map[string]string{"X-Real-IP": "3.3.3.3"}))
	s.Equal(http.StatusTooManyRequests, s.login("203.0.113.9:5678", nil))

	s.Equal([]string{"203.0.113.9", "203.0.113.9", "203.0.113.9", "203.0.113.9"}, s.limiter.keys)
}

func (s *RouterTestSuite) TestAuthRateLimitBehindTrustedProxy() {
	s.limiter.perKey = 1

	// 最左邊的值由 client 自行帶入, 不可採用
	s.Equal(http.StatusOK, s.login("10.0.0.5:80", map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.7"}))
	s.Equal(http.StatusTooManyRequests, s.login("10.0.0.5:80", map[string]string{"X-Forwarded-For": "2.2.2.2, 198.51.100.7"}))
	s.Equal(http.StatusOK, s.login("10.0.0.6:80", map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.9"}))
	s.Equal(http.StatusOK, s.login("10.0.0.5:80", map[string]string{"X-Real-IP": "198.51.100.9"}))

	s.Equal([]string{"198.51.100.7", "198.51.100.7", "198.51.100.8", "198.51.100.9"}, s.limiter.keys)
}

func (s *RouterTestSuite) TestPanicRecovered() {
	s.cart.panicOnGet = true
	rec, env := s.do(http.MethodGet, "/api/cart", "", s.bearer(constants.RoleUser))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.False(env.Success)
}

func TestPrintRoutes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {})
	logger := zerolog.Nop()
	require.NoError(t, PrintRoutes(r, &logger))
}
