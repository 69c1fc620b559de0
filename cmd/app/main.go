package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/able-backend/internal/app"
	"github.com/wichananm65/able-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := app.InitLogger(cfg.LogMode, cfg.LogFile); err != nil {
		panic(err)
	}

	ctx := context.Background()
	application := app.NewApplication(cfg)
	if err := application.Init(ctx); err != nil {
		zap.L().Fatal("init application", zap.Error(err))
	}
	defer application.Close()

	// a failed warm-up is not fatal; requests retry the fetch
	_ = application.WarmUp(ctx)
	application.StartJobs()

	server := newServer(application)
	go func() {
		if err := server.Listen(cfg.Addr); err != nil {
			zap.L().Error("server stopped", zap.Error(err))
		}
	}()
	zap.L().Info("listening", zap.String("addr", cfg.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		zap.L().Warn("shutdown", zap.Error(err))
	}
}
