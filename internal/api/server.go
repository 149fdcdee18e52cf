package api

import "github.com/RoyceAzure/lab/ecommerce/internal/api/handler"

type Server struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	CategoryHandler *handler.CategoryHandler
	ProductHandler  *handler.ProductHandler
	CartHandler     *handler.CartHandler
	FavoriteHandler *handler.FavoriteHandler
	OrderHandler    *handler.OrderHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	favoriteHandler *handler.FavoriteHandler,
	orderHandler *handler.OrderHandler,
) *Server {
	return &Server{
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		CategoryHandler: categoryHandler,
		ProductHandler:  productHandler,
		CartHandler:     cartHandler,
		FavoriteHandler: favoriteHandler,
		OrderHandler:    orderHandler,
	}
}
