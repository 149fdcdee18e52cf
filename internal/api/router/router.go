package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api"
	m "github.com/RoyceAzure/lab/ecommerce/internal/api/middleware"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type Options struct {
	AllowedOrigins []string
	// AuthLimiter 為 nil 時 auth 路由不限流
	AuthLimiter m.Limiter
	// TrustedProxies 為 CIDR 或單一 ip, 只信任這些來源帶的 X-Forwarded-For
	TrustedProxies []string
}

func SetupRouter(server *api.Server, tokenMaker token.Maker, logger *zerolog.Logger, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// 配置 CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", m.RequestIDHeader},
		ExposedHeaders:   []string{m.RequestIDHeader},
		MaxAge:           300,
	}))

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.ClientIPMiddleware(opts.TrustedProxies))
	r.Use(middleware.RealIP)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusNotFound, response.Response{Success: false, Error: "Route not found"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, nil, "OK")
	})

	// API 路由
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(m.NewRateLimitMiddleware(opts.AuthLimiter))
			}
			r.Post("/signup", server.AuthHandler.Signup)
			r.Post("/login", server.AuthHandler.Login)
			r.Post("/verify-otp", server.AuthHandler.VerifyOTP)
			r.Post("/resend-otp", server.AuthHandler.ResendOTP)
			r.Post("/forgot-password", server.AuthHandler.ForgotPassword)
			r.Post("/reset-password", server.AuthHandler.ResetPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/profile", server.UserHandler.GetProfile)
			r.Put("/profile", server.UserHandler.UpdateProfile)
			r.Get("/addresses", server.UserHandler.ListAddresses)
			r.Post("/addresses", server.UserHandler.CreateAddress)
			r.Put("/addresses/{addressId}", server.UserHandler.UpdateAddress)
			r.Delete("/addresses/{addressId}", server.UserHandler.DeleteAddress)
			r.Put("/addresses/{addressId}/set-default", server.UserHandler.SetDefaultAddress)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", server.CategoryHandler.ListCategories)
			r.Get("/{slug}", server.CategoryHandler.GetCategory)
			r.With(m.AuthMiddleware, m.AdminMiddleware).Post("/", server.CategoryHandler.CreateCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.ListProducts)
			r.Get("/search", server.ProductHandler.SearchProducts)
			r.Get("/category/{categorySlug}", server.ProductHandler.ListByCategory)
			r.Get("/{id}", server.ProductHandler.GetProduct)
			r.Get("/{id}/reviews", server.ProductHandler.ListReviews)
			r.With(m.AuthMiddleware).Post("/{id}/reviews", server.ProductHandler.AddReview)
			r.With(m.AuthMiddleware, m.AdminMiddleware).Post("/", server.ProductHandler.CreateProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/", server.CartHandler.GetCart)
			r.Post("/add", server.CartHandler.AddToCart)
			r.Put("/item/{itemId}", server.CartHandler.UpdateItem)
			r.Delete("/item/{itemId}", server.CartHandler.RemoveItem)
			r.Delete("/clear", server.CartHandler.ClearCart)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/", server.FavoriteHandler.ListFavorites)
			r.Get("/check/{productId}", server.FavoriteHandler.CheckFavorite)
			r.Post("/{productId}", server.FavoriteHandler.AddFavorite)
			r.Delete("/{productId}", server.FavoriteHandler.RemoveFavorite)
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Post("/create", server.OrderHandler.CreateOrder)
			r.Get("/my-orders", server.OrderHandler.GetMyOrders)
			r.Get("/{orderId}", server.OrderHandler.GetOrder)
			r.Get("/{orderId}/track", server.OrderHandler.TrackOrder)
			r.Put("/{orderId}/cancel", server.OrderHandler.CancelOrder)
			r.Post("/{orderId}/reorder", server.OrderHandler.Reorder)
			r.With(m.AdminMiddleware).Put("/{orderId}/status", server.OrderHandler.UpdateOrderStatus)
		})
	})

	return r
}

// PrintRoutes 在 debug 模式列出路由樹
func PrintRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route")
		return nil
	})
}
