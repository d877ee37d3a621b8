package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auction-storefront/internal/app"
	"auction-storefront/internal/config"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.ConfigureLogger(cfg.LogLevel, nil)
	gin.SetMode(cfg.GinMode)

	storefront, err := app.New(cfg, app.Options{})
	if err != nil {
		utils.Fatal("failed to start storefront", map[string]any{"error": err.Error()})
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           storefront.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Info("starting auction storefront", map[string]any{"addr": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("http server shutdown failed", map[string]any{"error": err.Error()})
	}
	if err := storefront.Close(); err != nil {
		utils.Error("storefront shutdown failed", map[string]any{"error": err.Error()})
	}
	utils.Info("stopped", nil)
}
