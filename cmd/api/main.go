package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techgallery-backend/config"
	_ "techgallery-backend/docs" // Important for Swagger
	v1 "techgallery-backend/internal/delivery/http/v1"
	"techgallery-backend/internal/repository/postgres"
	"techgallery-backend/internal/usecase"
	"techgallery-backend/pkg/auth"
	"techgallery-backend/pkg/database"
	"techgallery-backend/pkg/logger"
	"techgallery-backend/pkg/redis"
	"techgallery-backend/pkg/security"
	"techgallery-backend/pkg/validation"
)

// @title           Tech Gallery Skill API
// @version         1.0
// @description     User skill ratings for the technology catalog.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	if err := logger.Init(cfg.LogMode); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	security.SetDefault(security.NewAuditLogger(logger.Log.Desugar(), "techgallery-skills", cfg.LogMode))
	logger.Log.Infow("Starting tech gallery skill service", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
	if err != nil {
		logger.Log.Errorw("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional, rate limiting falls back to memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warnw("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	technologyRepo := postgres.NewTechnologyRepository(dbPool)
	skillRepo := postgres.NewSkillRepository(dbPool)

	// 6. Setup UseCases
	skillUC := usecase.NewSkillUsecase(skillRepo, userRepo, technologyRepo, validation.New())

	probes := map[string]usecase.Probe{"postgres": dbPool.Ping}
	if redis.Client() != nil {
		probes["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(probes)

	// 7. Setup Auth Provider (JWKS)
	var jwksProvider *auth.Provider
	if cfg.JWKSURL != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSURL, nil)
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SkillUC:      skillUC,
		Users:        userRepo,
		HealthUC:     healthUC,
		JWKSProvider: jwksProvider,
		Redis:        redis.Client(),
		Config:       cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorw("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Infow("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorw("Server forced to shutdown", "error", err)
	}

	logger.Log.Infow("Server exiting")
}
