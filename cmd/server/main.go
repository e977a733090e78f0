package main

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	_ "taskpulse/docs"
	"taskpulse/internal/config"
	"taskpulse/internal/server"
)

// @title           TaskPulse API
// @version         1.0
// @description     Personal task manager with routines, streaks and completion analytics.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Fatal("server initialization failed", zap.Error(err))
	}

	if cfg.DigestInterval > 0 {
		loc, err := cfg.Location()
		if err != nil {
			logger.Fatal("config", zap.Error(err))
		}
		scheduler := cron.New(cron.WithLocation(loc))
		_, err = scheduler.AddFunc("@every "+cfg.DigestInterval.String(), func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Digest.Run(jobCtx); err != nil {
				logger.Warn("digest job", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("schedule digest", zap.Error(err))
		}
		scheduler.Start()
		defer func() {
			ctx := scheduler.Stop()
			<-ctx.Done()
		}()
	}

	s.Run()
}
