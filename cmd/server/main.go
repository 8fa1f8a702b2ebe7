package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/honeycombo/combo-service/config"
	"github.com/honeycombo/combo-service/internal/catalogcache"
	"github.com/honeycombo/combo-service/internal/combo"
	"github.com/honeycombo/combo-service/internal/database"
	"github.com/honeycombo/combo-service/internal/handlers"
	fetch "github.com/honeycombo/combo-service/internal/http"
	"github.com/honeycombo/combo-service/internal/middleware"
	"github.com/honeycombo/combo-service/internal/parsers/csv"
	"github.com/honeycombo/combo-service/internal/parsers/xlsx"
	"github.com/honeycombo/combo-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)
	log.Logger = *logger

	logger.Info().Msg("Starting combo service")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(cfg.Telemetry))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	loader, err := buildLoader(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up catalog loader")
	}
	defer database.Close()

	cache, err := catalogcache.New(loader, cfg.Catalog.Cache)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog cache")
	}

	engineCfg := cfg.Engine
	engine, err := combo.NewEngine(&engineCfg,
		combo.WithLogger(logger),
		combo.WithMetrics(combo.NewMetricsRecorder()),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create combination engine")
	}
	if err := handlers.InitCombos(engine, cache); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register request validators")
	}

	// Warm in the background; requests get 503 until the first load lands.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.Cache.LoadTimeout)
		defer cancel()
		if err := cache.Warmup(warmCtx); err != nil {
			logger.Error().Err(err).Msg("Initial catalog load failed, refresher will retry")
		}
	}()
	cache.StartRefresher(ctx)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger), middleware.RequestLogger(logger))
	setupRoutes(ctx, router, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	stop()
	cache.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func setupRoutes(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(ctx, cfg.RateLimit))
	api.Use(requestTimeout(cfg.Server.RequestTimeout))
	{
		api.POST("/combos", handlers.RecommendCombos)
		api.GET("/catalog/categories", handlers.ListCategories)
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Server.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(5, 10))
	{
		internal.GET("/health", handlers.HealthCheck)
		internal.POST("/catalog/refresh", handlers.RefreshCatalog)
		internal.GET("/catalog/freshness", handlers.CatalogFreshness)
	}
}

// requestTimeout bounds handler work; the engine checks the context while
// enumerating.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func buildLoader(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (catalogcache.Loader, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		if err := database.Connect(ctx, cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info().Msg("Database connected")

		repo := database.NewCatalogRepository(database.Pool())
		return catalogcache.NewPostgresLoader(repo), nil
	case config.SourceURL:
		logger.Info().Strs("urls", cfg.Catalog.URLs).Msg("Using remote catalog")
		return catalogcache.NewURLLoader(cfg.Catalog.URLs, fetch.NewClient(cfg.Catalog.Fetch), parserOptions(cfg)...), nil
	default:
		logger.Info().Str("path", cfg.Catalog.Path).Msg("Using file catalog")
		return catalogcache.NewFileLoader(cfg.Catalog.Path, parserOptions(cfg)...), nil
	}
}

func parserOptions(cfg *config.Config) []catalogcache.LoaderOption {
	csvOpts := csv.DefaultOptions()
	csvOpts.DefaultBrand = cfg.Catalog.DefaultBrand
	xlsxOpts := xlsx.DefaultOptions()
	xlsxOpts.DefaultBrand = cfg.Catalog.DefaultBrand
	return []catalogcache.LoaderOption{
		catalogcache.WithCSVOptions(csvOpts),
		catalogcache.WithXLSXOptions(xlsxOpts),
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "combo-service").Logger()
	return &logger
}
