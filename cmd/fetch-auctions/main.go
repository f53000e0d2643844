// Command fetch-auctions pulls the Limited auction price history for every
// roster player from the Sorare GraphQL API, merges it into the durable
// per-player histories, and writes one CSV table per position.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/soraredata/auction-tracker/internal/config"
	"github.com/soraredata/auction-tracker/internal/roster"
	"github.com/soraredata/auction-tracker/pkg/cache"
	"github.com/soraredata/auction-tracker/pkg/client"
	"github.com/soraredata/auction-tracker/pkg/fetch"
	"github.com/soraredata/auction-tracker/pkg/history"
	"github.com/soraredata/auction-tracker/pkg/logging"
	"github.com/soraredata/auction-tracker/pkg/output"
	"github.com/soraredata/auction-tracker/pkg/runner"
	"github.com/soraredata/auction-tracker/pkg/throttle"
)

func main() {
	// A .env file is optional; environment variables referenced from the
	// config file are expanded at load time.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file (defaults apply when omitted)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadAndValidate(*configPath)
	} else {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		fallbackLogger := logging.Setup(logging.Config{Pretty: true})
		fallbackLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	ctx := context.Background()

	var responseCache *cache.Manager
	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).
				Msg("Redis unavailable, running without response cache")
		} else {
			responseCache = cache.NewManager(redisClient, cfg.Cache.TTL)
			logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Response cache enabled")
		}
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	players, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Roster.Path).Msg("Failed to load roster")
	}

	store, err := history.NewStore(cfg.Data.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open history store")
	}

	sink, err := output.NewCSVSink(cfg.Data.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open output sink")
	}

	apiClient := client.New(client.Config{
		Endpoint: cfg.API.URL,
		Timeout:  cfg.API.Timeout,
		Cache:    responseCache,
	})
	throttler := throttle.New(cfg.Fetch.ThrottleInterval)

	run := runner.New(runner.Config{
		Roster:    players,
		Batch:     fetch.NewBatchFetcher(apiClient, throttler, cfg.Fetch.PageSize),
		Paging:    fetch.NewPagingFetcher(apiClient, throttler, cfg.Fetch.PageSize),
		Store:     store,
		Sink:      sink,
		Requests:  apiClient,
		GroupSize: cfg.Fetch.GroupSize,
		MarkerDir: cfg.Data.Dir,
	})

	stats, err := run.Run(ctx)
	if err != nil {
		// Histories persisted before the failure stay valid; the next run
		// resumes from them.
		logger.Error().Err(err).Msg("Run aborted")
		os.Exit(1)
	}

	logger.Info().
		Str("run_id", stats.RunID).
		Int("players", stats.Players).
		Int("api_calls", stats.APICalls).
		Int("new_records", stats.NewRecords).
		Dur("elapsed", stats.Elapsed).
		Msg("Done")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics listener failed")
	}
}
