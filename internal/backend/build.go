package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ctfbridge/ctfbridge/internal/attempts"
	"github.com/ctfbridge/ctfbridge/internal/backend/ctfd"
	"github.com/ctfbridge/ctfbridge/internal/backend/postgres"
	"github.com/ctfbridge/ctfbridge/internal/backend/static"
	"github.com/ctfbridge/ctfbridge/internal/config"
)

const (
	ProviderStatic   = "static"
	ProviderCTFd     = "ctfd"
	ProviderPostgres = "postgres"
)

// Ensure every provider implements Backend.
var (
	_ Backend = (*static.Provider)(nil)
	_ Backend = (*ctfd.Provider)(nil)
	_ Backend = (*postgres.Provider)(nil)
)

func Providers() []string {
	return []string{ProviderStatic, ProviderCTFd, ProviderPostgres}
}

// Build constructs the configured provider, wrapped with the attempt recorder
// when one is enabled. The returned close function releases provider
// resources and must run before the process exits.
func Build(
	ctx context.Context,
	cfg *config.Config,
) (Backend, func(context.Context) error, error) {
	var built Backend
	closer := func(context.Context) error { return nil }

	switch cfg.Provider {
	case ProviderStatic:
		p, err := static.New(ctx, cfg.Static.DatasetFile)
		if err != nil {
			return nil, nil, fmt.Errorf("build static provider: %w", err)
		}
		built = p

	case ProviderCTFd:
		p, err := ctfd.New(ctfd.Config{
			BaseURL:    cfg.CTFd.BaseURL,
			Token:      cfg.CTFd.Token,
			Cookie:     cfg.CTFd.Cookie,
			Timeout:    time.Duration(cfg.CTFd.TimeoutSecs) * time.Second,
			MaxRetries: cfg.CTFd.MaxRetries,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build ctfd provider: %w", err)
		}
		built = p

	case ProviderPostgres:
		p, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("build postgres provider: %w", err)
		}
		built = p
		closer = func(context.Context) error { return p.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	if cfg.Attempts.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Attempts.RedisHost,
			DB:   cfg.Attempts.RedisDB,
		})
		built = WithRecorder(built, attempts.NewRedisRecorder(attempts.RedisRecorderConfig{
			RedisClient: client,
			TTL:         cfg.Attempts.TTL,
		}))

		providerClose := closer
		closer = func(ctx context.Context) error {
			return errors.Join(client.Close(), providerClose(ctx))
		}
	}

	return built, closer, nil
}
