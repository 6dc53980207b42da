package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/spaceyatech/identity-api/docs"
	"github.com/spaceyatech/identity-api/internal/api/handler"
	"github.com/spaceyatech/identity-api/internal/api/middleware"
	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/password"
	"github.com/spaceyatech/identity-api/internal/core/service"
	"github.com/spaceyatech/identity-api/internal/core/token"
	"github.com/spaceyatech/identity-api/internal/infrastructure/config"
	mongodb "github.com/spaceyatech/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/spaceyatech/identity-api/internal/infrastructure/db/redis"
)

// Services bundles the constructed core services so main can run startup
// tasks (role seeding) against the same instances the router uses.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Roles    *service.RoleService
	Accounts *service.AccountService
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, *Services) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	blocklistRepo := mongodb.NewBlocklistRepository(db)
	accountRepo := mongodb.NewAccountRepository(db)

	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	codec := token.NewCodec(cfg.Auth.EmailTokenSecret)
	limiter := redisdb.NewResendLimiter(rdb, cfg.Auth.ResendLimit, cfg.Auth.ResendWindow)

	authService := service.NewAuthService(userRepo, blocklistRepo, hasher, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	userService := service.NewUserService(userRepo, codec, hasher, limiter, cfg.Auth.ConfirmTTL, cfg.Auth.ResetTTL, log)
	roleService := service.NewRoleService(roleRepo, userRepo, log)
	accountService := service.NewAccountService(accountRepo)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	accountHandler := handler.NewAccountHandler(accountService)

	authn := middleware.Authenticate(authService)
	fresh := middleware.RequireFresh(authService)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin)
	superOnly := middleware.RequireRoles(domain.RoleSuperAdmin)

	// --- Public auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.GET("/auth/confirm-email", authHandler.ConfirmEmail)
	e.POST("/auth/confirm-email", authHandler.ResendConfirmation)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.PUT("/auth/forgot-password", authHandler.ResetPassword)

	// --- Authenticated routes ---
	e.DELETE("/auth/logout", authHandler.Logout, authn)
	e.PUT("/auth/change-password", authHandler.ChangePassword, authn, fresh)
	e.GET("/me", userHandler.Me, authn)
	e.PUT("/me", userHandler.UpdateMe, authn)

	accounts := e.Group("/accounts", authn)
	accounts.GET("", accountHandler.List)
	accounts.POST("", accountHandler.Create)
	accounts.GET("/:account_id", accountHandler.Detail)
	accounts.PUT("/:account_id", accountHandler.Update)
	accounts.DELETE("/:account_id", accountHandler.Delete)

	// --- Admin routes ---
	e.GET("/users", userHandler.List, authn, adminOnly)
	e.GET("/users/:user_id", userHandler.Detail, authn, adminOnly)
	e.POST("/users/:user_id/roles", roleHandler.Grant, authn, superOnly)

	roles := e.Group("/roles", authn)
	roles.GET("", roleHandler.List, adminOnly)
	roles.GET("/:role_id", roleHandler.Detail, adminOnly)
	roles.POST("", roleHandler.Create, superOnly)
	roles.PUT("/:role_id", roleHandler.Rename, superOnly)
	roles.DELETE("/:role_id", roleHandler.Delete, superOnly)

	// --- Observability and docs (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoswagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, &Services{
		Auth:     authService,
		Users:    userService,
		Roles:    roleService,
		Accounts: accountService,
	}
}
