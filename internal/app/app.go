// Package app assembles loggers, caches, relay handlers and dispatch
// channels from configuration for the inplace commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/cache"
	"github.com/ZaguanLabs/inplace/internal/config"
	"github.com/ZaguanLabs/inplace/relay"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a logger writing to w: JSON in production, console
// output in development mode.
func NewLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, &inplace.ConfigError{Message: "invalid log level " + cfg.Level}
	}

	var encoder zapcore.Encoder
	if cfg.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// Runtime holds the components built from a configuration and releases
// them on Close.
type Runtime struct {
	Logger  *zap.Logger
	Cache   cache.ReplyCache
	Handler *relay.Handler
	Channel inplace.Channel

	closers []func() error
}

// Close releases caches and backend clients.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// NewRelay builds the relay side: cache and handler.
func NewRelay(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{Logger: logger}
	if err := rt.buildRelay(ctx, cfg); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// NewClient builds the overlay side: a dispatch channel for the configured
// relay mode. Local mode builds the relay in-process.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{Logger: logger}

	switch cfg.Relay.Mode {
	case config.RelayLocal:
		if err := rt.buildRelay(ctx, cfg); err != nil {
			rt.Close()
			return nil, err
		}
		rt.Channel = relay.NewLocalChannel(rt.Handler, relay.WithLocalTimeout(cfg.Relay.Timeout))
	case config.RelayHTTP:
		rt.Channel = relay.NewHTTPChannel(cfg.Relay.URL)
	case config.RelayLambda:
		ch, err := relay.NewLambdaChannel(ctx, cfg.Relay.Function)
		if err != nil {
			return nil, err
		}
		rt.Channel = ch
	default:
		return nil, &inplace.ConfigError{Message: "unknown relay mode " + cfg.Relay.Mode}
	}

	return rt, nil
}

func (rt *Runtime) buildRelay(ctx context.Context, cfg *config.Config) error {
	c, err := rt.buildCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	rt.Cache = c

	opts := []relay.HandlerOption{
		relay.WithLogger(rt.Logger),
		relay.WithRetry(cfg.RetryPolicy()),
	}
	if c != nil {
		model := cfg.Backends.OpenAI.Model
		if model == "" {
			model = relay.DefaultOpenAIModel
		}
		opts = append(opts,
			relay.WithCache(c),
			relay.WithCacheScope(inplace.NormalizeLocale(cfg.TargetLang), model),
		)
	}

	backends, err := rt.buildBackends(cfg)
	if err != nil {
		return err
	}
	for _, id := range inplace.Services() {
		if b, ok := backends[id]; ok {
			opts = append(opts, relay.WithBackend(id, b))
		}
	}
	if len(backends) == 0 {
		return &inplace.ConfigError{Message: "no relay backend is configured"}
	}

	rt.Handler = relay.NewHandler(opts...)
	return nil
}

func (rt *Runtime) buildBackends(cfg *config.Config) (map[inplace.ServiceID]relay.Backend, error) {
	backends := make(map[inplace.ServiceID]relay.Backend)
	b := cfg.Backends

	if b.Tencent.SecretID != "" {
		tencent, err := relay.NewTencentBackend(relay.TencentConfig{
			SecretID:   b.Tencent.SecretID,
			SecretKey:  b.Tencent.SecretKey,
			Region:     b.Tencent.Region,
			Endpoint:   b.Tencent.Endpoint,
			TargetLang: cfg.TargetLang,
		})
		if err != nil {
			return nil, err
		}
		backends[inplace.ServiceTencent] = tencent
	}

	if b.Google.Enabled {
		google, err := relay.NewGoogleBackend(relay.GoogleConfig{
			APIKey:          b.Google.APIKey,
			CredentialsFile: b.Google.Credentials,
			TargetLang:      cfg.TargetLang,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, google.Close)
		backends[inplace.ServiceGoogle] = google
	}

	if b.OpenAI.Enabled {
		backends[inplace.ServiceOpenAI] = relay.NewOpenAIBackend(relay.OpenAIConfig{
			Model:      b.OpenAI.Model,
			BaseURL:    b.OpenAI.BaseURL,
			TargetLang: cfg.TargetLang,
		})
	}

	return backends, nil
}

func (rt *Runtime) buildCache(ctx context.Context, cfg config.CacheConfig) (cache.ReplyCache, error) {
	switch cfg.Type {
	case config.CacheNone, "":
		return nil, nil
	case config.CacheMemory:
		return cache.NewInMemoryCache(cfg.TTL), nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, &inplace.CacheError{Message: "connecting to redis", Cause: err}
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	case config.CacheSQLite:
		c, err := cache.NewSQLiteCache(cfg.Path, cfg.TTL)
		if err != nil {
			return nil, &inplace.CacheError{Message: "opening sqlite cache", Cause: err}
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	default:
		return nil, &inplace.ConfigError{Message: fmt.Sprintf("unknown cache type %q", cfg.Type)}
	}
}
