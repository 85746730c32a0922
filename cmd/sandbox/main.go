// Command sandbox runs a local restaurant API for developing the console against.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/config"
	"github.com/yeremiapane/restaurant-console/sandbox"
	"github.com/yeremiapane/restaurant-console/utils"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := sandbox.OpenDB(cfg.Sandbox.DSN)
	if err != nil {
		utils.ErrorLogger.Fatal(err)
	}
	if err := sandbox.Migrate(db); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
	if err := sandbox.Seed(db, time.Now()); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed sandbox: %v", err)
	}

	r := sandbox.NewRouter(db, sandbox.Options{
		JWTSecret:       []byte(cfg.Sandbox.JWTSecret),
		StrictDateRange: cfg.Sandbox.StrictDateRange,
	})

	srv := &http.Server{
		Addr:              cfg.Sandbox.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Sandbox API listening on %s (strict date range: %t)", cfg.Sandbox.Listen, cfg.Sandbox.StrictDateRange)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Forced shutdown: %v", err)
	}
}
