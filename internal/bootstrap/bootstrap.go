package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/learnway/member/internal/app/controllers"
	appMigrations "github.com/learnway/member/internal/app/migrations"
	appRepos "github.com/learnway/member/internal/app/repositories"
	appRoutes "github.com/learnway/member/internal/app/routes"
	appServices "github.com/learnway/member/internal/app/services"
	"github.com/learnway/member/internal/config"
	"github.com/learnway/member/internal/db"
	appMiddleware "github.com/learnway/member/internal/middleware"
	pkgAuth "github.com/learnway/member/internal/pkg/auth"
	"github.com/learnway/member/internal/pkg/filestorage"
	"github.com/learnway/member/internal/pkg/helpers"
	"github.com/learnway/member/internal/pkg/logger"
	"github.com/learnway/member/internal/pkg/session"
	"github.com/learnway/member/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store            appRepos.Store
	Images           *filestorage.LocalStorage
	Identities       session.IdentityStore
	JWTService       *pkgAuth.JWTService
	Hasher           pkgAuth.PasswordHasher
	AuthService      *appServices.AuthService
	MemberService    appServices.MemberService
	AuthController   *appControllers.AuthController
	MemberController *appControllers.MemberController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupIdentityStore connects to Redis when an address is configured and falls back to memory otherwise.
// The returned close function is never nil.
func SetupIdentityStore(cfg *config.Config, lgr zerolog.Logger) (session.IdentityStore, func() error, error) {
	if cfg.Redis.Addr == "" {
		lgr.Warn().Msg("Redis address not configured, keeping identities in memory")
		return session.NewMemoryStore(), func() error { return nil }, nil
	}

	store, err := session.NewRedisStore(session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      helpers.ParseDuration(cfg.Redis.IdentityTTL, 24*time.Hour),
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		return nil, nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Identity store connected to Redis")
	return store, store.Close, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, store appRepos.Store, identities session.IdentityStore, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Store:      store,
		Identities: identities,
		Logger:     lgr,
	}

	deps.Images = filestorage.NewLocalStorage(cfg.Server.UploadDir, cfg.Server.ImageURLPrefix, cfg.Server.DefaultImagePath)
	deps.Hasher = pkgAuth.NewBcryptHasher(pkgAuth.BcryptCost)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		store,
		deps.Hasher,
		deps.JWTService,
		identities,
		deps.Images,
		logger.Component("auth"),
	)
	deps.MemberService = appServices.NewMemberService(
		store,
		deps.Images,
		deps.Hasher,
		identities,
		logger.Component("member"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, identities, logger.Component("auth_middleware"))
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.MemberController = appControllers.NewMemberController(deps.MemberService, deps.Images, lgr)

	return deps, nil
}

// SeedAdmin creates the configured administrator account. Failures are logged and do not stop startup.
func SeedAdmin(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	_, err := seed.EnsureAdmin(ctx, deps.Store, deps.Hasher, cfg.Server.DefaultImagePath, seed.AdminAccount{
		MemberID: cfg.Admin.MemberID,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to seed admin account, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, health appRoutes.HealthCheck) *gin.Engine {
	lgr := deps.Logger
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.UseFormFieldNames()

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadSize
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.LimitBodySize(cfg.Server.MaxUploadSize),
	)

	setupStaticFileServing(router, cfg, lgr)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.MemberController,
		deps.AuthMiddleware,
		health,
	)

	return router
}

// setupStaticFileServing serves uploaded avatars and the bundled default image
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.UploadDir
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create upload directory")
	}
	router.Static(cfg.Server.ImageURLPrefix, uploadPath)
	router.Static("/img", filepath.Join(cfg.Server.StaticDir, "img"))

	lgr.Info().
		Str("uploads", uploadPath).
		Str("static", cfg.Server.StaticDir).
		Msg("Static file serving configured")
}
