package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SuleimanKh97/test2Master/internal/domain"
	"github.com/SuleimanKh97/test2Master/internal/server"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "7158"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// demoCatalog seeds the reference server with a few products so the cart
// endpoints are usable out of the box.
func demoCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wireless Mouse", Price: decimal.NewFromFloat(19.99), ImageURL: "/img/mouse.jpg"},
		{ID: 2, Name: "Mechanical Keyboard", Price: decimal.NewFromFloat(89.50), ImageURL: "/img/keyboard.jpg"},
		{ID: 3, Name: "USB-C Hub", Price: decimal.NewFromFloat(34.00), ImageURL: "/img/hub.jpg"},
		{ID: 4, Name: "Laptop Stand", Price: decimal.NewFromFloat(42.75)},
	}
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cartServer := server.New(demoCatalog(), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      cartServer.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("cart server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
