package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quickcompare/backend/config"
	httpDelivery "github.com/quickcompare/backend/internal/delivery/http"
	"github.com/quickcompare/backend/internal/domain"
	"github.com/quickcompare/backend/internal/infrastructure/cache"
	"github.com/quickcompare/backend/internal/infrastructure/geocode"
	"github.com/quickcompare/backend/internal/infrastructure/platform"
	"github.com/quickcompare/backend/internal/infrastructure/store"
	"github.com/quickcompare/backend/internal/usecase"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Server.Environment)
	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Msg("starting quickcompare backend")

	// Cache backend
	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisCache.Close()
		cacheRepo = redisCache
	default:
		cacheRepo = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}

	// Raw-product archive (optional)
	var archive domain.ProductArchive
	if cfg.Database.Enabled {
		sqliteArchive, err := store.Open(cfg.Database.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open archive db")
		}
		defer sqliteArchive.Close()
		archive = sqliteArchive
	}

	// Platform clients
	geocoder := geocode.NewClient(cfg.Geocode.APIKey, "")
	blinkit := platform.NewBlinkitClient(cfg.Scrape.BlinkitBaseURL)
	zepto := platform.NewZeptoClient(cfg.Scrape.ZeptoBaseURL)
	dmart := platform.NewDmartClient(cfg.Scrape.DmartBaseURL)
	instamart := platform.NewInstamartClient(cfg.Scrape.InstamartBaseURL, geocoder)

	scrapers := []domain.PlatformScraper{blinkit, zepto, dmart, instamart}
	fetchers := []domain.ETAFetcher{blinkit, zepto, dmart, instamart}

	// Usecase layer
	merger := usecase.NewMergeService(usecase.MergeConfig{
		ScoreThreshold:     cfg.Matching.ScoreThreshold,
		HighScoreThreshold: cfg.Matching.HighScoreThreshold,
		QuantityTolerance:  cfg.Matching.QuantityTolerance,
		ShuffleSingles:     cfg.Matching.ShuffleSingles,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	searchService := usecase.NewSearchService(cacheRepo, scrapers, archive, merger, usecase.SearchServiceConfig{
		CacheTTL:       cfg.Cache.TTL,
		ScrapeTimeout:  cfg.Scrape.Timeout,
		DefaultAddress: cfg.Scrape.DefaultAddress,
		DefaultPincode: cfg.Scrape.DefaultPincode,
	})

	etaService := usecase.NewETAService(cacheRepo, fetchers, usecase.ETAServiceConfig{
		CacheTTL:       cfg.Cache.TTL,
		FetchTimeout:   cfg.ETA.Timeout,
		DefaultAddress: cfg.Scrape.DefaultAddress,
		DefaultPincode: cfg.Scrape.DefaultPincode,
	})

	log.Info().
		Int("score_threshold", cfg.Matching.ScoreThreshold).
		Bool("shuffle_singles", cfg.Matching.ShuffleSingles).
		Msg("matching configured")

	// HTTP delivery
	handler := httpDelivery.NewHandler(searchService, etaService, cfg.Geocode.APIKey)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// setupLogger configures zerolog: human-readable console output in
// development, JSON elsewhere.
func setupLogger(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
