package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"sjsage522/vesselschedule/config"
	"sjsage522/vesselschedule/internal"
	"sjsage522/vesselschedule/internal/crawler"
	"sjsage522/vesselschedule/logger"
	"sjsage522/vesselschedule/services/cache"
	"sjsage522/vesselschedule/services/publisher"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.ForRun(uuid.NewString())

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapters := crawler.CreateAdapters(cfg, crawler.DepsFromConfig(cfg))
	app := newCLIApp(cfg, adapters, os.Stdout)

	err := app.RunContext(ctx, os.Args)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return coder.ExitCode()
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Dependencies exposes the services to the worker
func (s *Services) Dependencies() internal.Dependencies {
	if s == nil {
		return internal.Dependencies{}
	}
	return internal.Dependencies{Cache: s.Cache, Publisher: s.Publisher}
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s == nil || s.Publisher == nil {
		return
	}
	if err := s.Publisher.Close(); err != nil {
		logger.Warn("failed to close publisher: %v", err)
	}
}

// initializeServices connects to Memcache when configured and to Redis when
// publishing was asked for. A missing cooldown cache only disables cooldowns;
// an unreachable Redis is an error because the caller asked to publish.
func initializeServices(ctx context.Context, cfg *config.Config, publish bool) (*Services, error) {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, cooldowns disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = memcacheService
			logger.Debug("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if publish {
		if cfg.RedisAddr == "" {
			return nil, errors.New("--publish needs REDIS_ADDR")
		}
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			_ = redisPublisher.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		services.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}
