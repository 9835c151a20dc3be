package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskforge/taskforge-api/internal/api/handler"
	"github.com/taskforge/taskforge-api/internal/api/middleware"
	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
	"github.com/taskforge/taskforge-api/internal/core/service"
	"github.com/taskforge/taskforge-api/internal/infrastructure/config"
	mongodb "github.com/taskforge/taskforge-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskforge/taskforge-api/internal/infrastructure/db/redis"
	"github.com/taskforge/taskforge-api/internal/pkg/hash"
	"github.com/taskforge/taskforge-api/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// audit may be nil when the async audit pipeline is disabled.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger, audit ports.AuditRecorder) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskforge"))

	// --- Dependencies ---
	identityRepo := mongodb.NewIdentityRepository(db)
	hasher := hash.NewBcrypt(cfg.Auth.BcryptCost)
	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)

	authService := service.NewAuthService(identityRepo, hasher, tokens, throttle, audit, log)
	identityService := service.NewIdentityService(identityRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	identityHandler := handler.NewIdentityHandler(identityService, authService)
	resourceHandler := handler.NewResourceHandler()

	gate := middleware.Auth(tokens, identityRepo, log)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Protected routes ---
	protected := e.Group("/api", gate)
	protected.GET("/me", identityHandler.Me)
	protected.PUT("/me/password", identityHandler.ChangePassword)
	protected.GET("/projects", resourceHandler.Projects, middleware.RequireRole(domain.RoleEmployee))
	protected.GET("/reports", resourceHandler.Reports, middleware.RequireRole(domain.RoleAdmin))

	users := protected.Group("/users", middleware.RequireRole(domain.RoleAdmin))
	users.GET("", identityHandler.List)
	users.GET("/:id", identityHandler.Get)
	users.PATCH("/:id", identityHandler.Update)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
