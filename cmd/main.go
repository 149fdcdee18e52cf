package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/api"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/handler"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/router"
	"github.com/RoyceAzure/lab/ecommerce/internal/appcontext"
	"github.com/RoyceAzure/lab/ecommerce/internal/config"
	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/rs/zerolog/log"
)

// @title ecommerce
// @version 1.0
// @description 電商後端 api
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup application")
		return
	}

	// 初始化 handler
	server := api.NewServer(
		handler.NewAuthHandler(app.AuthService),
		handler.NewUserHandler(app.UserService),
		handler.NewCategoryHandler(app.CategoryService),
		handler.NewProductHandler(app.ProductService),
		handler.NewCartHandler(app.CartService),
		handler.NewFavoriteHandler(app.FavoriteService),
		handler.NewOrderHandler(app.OrderService),
	)

	// 設置路由
	r := router.SetupRouter(server, app.TokenMaker, &app.Logger, router.Options{
		AllowedOrigins: app.Cf.AllowedOrigins(),
		AuthLimiter:    app.AuthLimiter,
		TrustedProxies: app.Cf.TrustedProxyList(),
	})
	if constants.ENV(app.Cf.Environment) == constants.Debug {
		if err := router.PrintRoutes(r, &app.Logger); err != nil {
			log.Warn().Err(err).Msg("failed to walk routes")
		}
	}

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Application shutdown error")
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	<-shutDownCompleted
	log.Info().Msg("closed completed")
}
