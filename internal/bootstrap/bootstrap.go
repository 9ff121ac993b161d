package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/campus/internal/app/controllers"
	appRepos "github.com/yigit/campus/internal/app/repositories"
	appRoutes "github.com/yigit/campus/internal/app/routes"
	appServices "github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/config"
	"github.com/yigit/campus/internal/db"
	"github.com/yigit/campus/internal/metrics"
	appMiddleware "github.com/yigit/campus/internal/middleware"
	pkgAuth "github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/filestorage"
	"github.com/yigit/campus/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config   *config.Config
	Database *db.Database
	Store    *appRepos.RecordStore
	Repos    *appRepos.Repositories
	Redis    *redis.Client // nil when revocations live in memory
	Metrics  *metrics.Metrics

	JWTService  *pkgAuth.JWTService
	Revoker     pkgAuth.Revoker
	FileStorage *filestorage.LocalStorage

	AuthService    appServices.AuthService
	AdminService   appServices.AdminService
	StudentService appServices.StudentService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := SetupLogger(cfg)
	return cfg, lgr, nil
}

// SetupLogger configures the global logger from cfg and returns it
func SetupLogger(cfg *config.Config) zerolog.Logger {
	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return lgr
}

// SetupDatabase opens the configured store and creates the tables when absent.
func SetupDatabase(ctx context.Context, cfg *config.Config, m *metrics.Metrics, lgr zerolog.Logger) (*db.Database, *appRepos.RecordStore, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}

	store := appRepos.NewRecordStore(database.DB, database.Dialect, appRepos.DefaultSchema(), m)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.Initialize(initCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to create tables")
		_ = database.Close()
		return nil, nil, fmt.Errorf("database initialization failed: %w", err)
	}
	lgr.Info().Msg("Database tables ensured.")

	return database, store, nil
}

// SetupRevoker picks the token revocation backend. Redis is used when an
// address is configured and answers; otherwise revocations stay in memory.
func SetupRevoker(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (pkgAuth.Revoker, *redis.Client) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, keeping token revocations in memory")
		return pkgAuth.NewMemoryRevoker(), nil
	}

	client := pkgAuth.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, keeping token revocations in memory")
		_ = client.Close()
		return pkgAuth.NewMemoryRevoker(), nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Token revocations stored in redis")
	return pkgAuth.NewRedisRevoker(client), client
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.Database, store *appRepos.RecordStore, m *metrics.Metrics, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Database: database,
		Store:    store,
		Metrics:  m,
		Logger:   lgr,
	}

	deps.Repos = appRepos.NewRepositories(store)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.PublicUploadPath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Revoker, deps.Redis = SetupRevoker(ctx, cfg, lgr)
	verifier := pkgAuth.NewBcryptVerifier(cfg.Auth.BcryptCost)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.AdminRepository,
		verifier,
		deps.JWTService,
		deps.Revoker,
		appServices.AuthOptions{AllowRegistration: cfg.Auth.AllowRegistration},
		logger.WithComponent("auth_service"),
	)
	deps.AdminService = appServices.NewAdminService(deps.Repos.AdminRepository, verifier, logger.WithComponent("admin_service"))
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.FileStorage, logger.WithComponent("student_service"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, cfg.JWT.CookieName)

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(deps.AuthService, appControllers.CookieOptions{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.IsProduction(),
		}, lgr),
		Admin:   appControllers.NewAdminController(deps.AdminService, lgr),
		Student: appControllers.NewStudentController(deps.StudentService, cfg.Server.MaxUploadMB, lgr),
		Legacy:  appControllers.NewLegacyController(deps.StudentService, lgr),
		Health:  appControllers.NewHealthController(store.Ping, redisPing(deps.Redis)),
	}

	return deps, nil
}

func redisPing(client *redis.Client) appControllers.PingFunc {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.WithComponent("http"), "/metrics", "/api/v1/health"),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.SecurityHeaders(cfg.IsProduction()),
		cors.New(corsConfig(cfg)),
	)

	// Uploaded student photos
	router.Static(cfg.Server.PublicUploadPath, cfg.Server.StoragePath)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders: []string{appMiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	// cookies only travel to explicitly allowed origins
	c.AllowOrigins = cfg.Server.AllowedOrigins
	c.AllowCredentials = true
	return c
}

// Close releases the database handle and the redis client
func (d *Dependencies) Close() error {
	var firstErr error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if d.Database != nil {
		if err := d.Database.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
