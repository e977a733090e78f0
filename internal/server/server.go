package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskpulse/internal/auth"
	"taskpulse/internal/config"
	"taskpulse/internal/handler"
	"taskpulse/internal/middleware"
	"taskpulse/internal/repository"
	"taskpulse/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger

	// Digest is exposed so main can schedule the periodic digest job.
	Digest *service.DigestService
}

func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := repository.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		return nil, err
	}

	// Setup Gin
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	clock := service.SystemClock()
	routines := service.NewRoutineScheduler(loc, weekStart)
	taskSvc := service.NewTaskService(taskRepo, routines, clock, logger)
	statsSvc := service.NewStatsService(taskRepo, routines, clock, loc)
	digestSvc := service.NewDigestService(userRepo, statsSvc, logger)

	// Initialize handlers
	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)
	userHandler := handler.NewUserHandler(userRepo, tokens)
	taskHandler := handler.NewTaskHandler(taskSvc, routines, clock)
	statsHandler := handler.NewStatsHandler(statsSvc)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/complete", taskHandler.Complete)

		// Analytics routes
		authorized.GET("/stats/streak", statsHandler.Streak)
		authorized.GET("/stats/timeseries", statsHandler.Timeseries)
		authorized.GET("/stats/priorities", statsHandler.Priorities)
		authorized.GET("/stats/summary", statsHandler.Summary)
		authorized.GET("/stats/routines", statsHandler.Routines)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Logger: logger,
		Digest: digestSvc,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := repository.CloseDB(s.DB); err != nil {
		s.Logger.Warn("db close", zap.Error(err))
	}
	s.Logger.Info("server exited properly")
}
