package main

import (
	"context"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	echoapi "github.com/libris-app/libris/api/echo"
	"github.com/libris-app/libris/cache"
	rediscache "github.com/libris-app/libris/cache/redis"
	"github.com/libris-app/libris/config"
	"github.com/libris-app/libris/internal/auth"
	"github.com/libris-app/libris/internal/metrics"
	"github.com/libris-app/libris/internal/notify"
	"github.com/libris-app/libris/internal/server"
	"github.com/libris-app/libris/internal/token"
	applog "github.com/libris-app/libris/log"
	"github.com/libris-app/libris/mongodb"
	"github.com/libris-app/libris/services"
	"github.com/libris-app/libris/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		applog.Setup("info", true)
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	applog.Setup(cfg.LogLevel, cfg.LogPretty)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("mongo_db_name", cfg.MongoDBName).
		Str("otel_service", cfg.OtelServiceName).
		Msg("starting libris server")

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize TracerProvider")
	}

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MongoDB connection")
	}
	db := mongodb.GetDB()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize UserRepository")
	}
	sessionRepo, err := mongodb.NewSessionRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SessionRepository")
	}
	catalogRepo, err := mongodb.NewCatalogRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CatalogRepository")
	}

	// Redis cache when configured, in-process TTL cache otherwise.
	var appCache cache.Cache
	var memCache *cache.MemoryCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
		}
		appCache = rediscache.New(redisClient, cfg.CachePrefix)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using Redis cache")
	} else {
		memCache = cache.NewMemoryCache()
		appCache = memCache
		log.Info().Msg("using in-process cache")
	}

	issuer := token.NewIssuer(
		cfg.JWTIssuer,
		[]byte(cfg.JWTAccessSecret),
		[]byte(cfg.JWTRefreshSecret),
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHour)*time.Hour,
	)
	hasher := auth.NewBcryptPasswordHasher(bcrypt.DefaultCost)

	sessionService := services.NewSessionService(
		userRepo, sessionRepo, appCache, issuer, hasher, int64(cfg.SessionLimit))
	userService := services.NewUserService(userRepo, hasher)
	catalogService := services.NewCatalogService(
		catalogRepo, appCache, time.Duration(cfg.CatalogCacheTTLSec)*time.Second)
	cleanupService := services.NewCleanupService(sessionRepo, notify.LogNotifier{})

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	go cleanupService.Start(cleanupCtx, time.Duration(cfg.CleanupIntervalHour)*time.Hour)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	registry.MustRegister(metrics.NewActiveSessionsGauge(func() float64 {
		countCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := sessionRepo.CountActiveSessions(countCtx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to count active sessions for metrics scrape")
			return math.NaN()
		}
		return float64(n)
	}))

	httpServer := server.NewHTTPServer(cfg, registry,
		echoapi.NewAuthAPI(sessionService, userService),
		echoapi.NewCatalogAPI(catalogService, issuer),
	)

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	stopCleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer provider shutdown error")
	}
	if memCache != nil {
		memCache.Close()
	}
	mongodb.CloseMongoDB(shutdownCtx)
	log.Info().Msg("server stopped")
}
