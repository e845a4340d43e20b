package v1

import (
	"time"

	"techgallery-backend/config"
	"techgallery-backend/internal/delivery/http/middleware"
	"techgallery-backend/internal/domain"
	"techgallery-backend/internal/usecase"
	"techgallery-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	SkillUC      domain.SkillUsecase
	Users        domain.UserDirectory
	HealthUC     usecase.HealthUsecase
	JWKSProvider *auth.Provider // nil when only HS256 tokens are accepted
	Redis        *goredis.Client
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	importLimit := middleware.RateLimitMiddleware(middleware.ImportRateLimitConfig(
		deps.Config.ImportRateLimit,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
		deps.Redis,
	))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config))
	{
		NewSkillHandler(protected, deps.SkillUC, deps.Users, importLimit)
	}

	return r
}
