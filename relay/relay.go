// Package relay implements the executor side of the dispatch channel: it
// receives request envelopes, calls the translation backend named by the
// request, and answers with a reply envelope.
//
// Backend failures never surface as transport errors. The relay converts
// them into a well-formed reply carrying inplace.FailureMarkup, which the
// overlay then displays like any other content.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/cache"
	"go.uber.org/zap"
)

// ErrNoBackend is returned for requests naming a service the relay does not
// serve.
var ErrNoBackend = errors.New("relay: no backend for service")

// Backend performs the translation for one service. Body is the request body
// built by the service's adapter.
type Backend interface {
	Translate(ctx context.Context, body json.RawMessage) (string, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, body json.RawMessage) (string, error)

// Translate calls f.
func (f BackendFunc) Translate(ctx context.Context, body json.RawMessage) (string, error) {
	return f(ctx, body)
}

// Handler routes requests to backends.
type Handler struct {
	backends map[inplace.ServiceID]Backend
	cache    cache.ReplyCache
	lang     string
	model    string
	retry    inplace.RetryConfig
	fallback string
	logger   *zap.Logger
}

// HandlerOption is a functional option for configuring the Handler.
type HandlerOption func(*Handler)

// WithBackend registers the backend serving id.
func WithBackend(id inplace.ServiceID, backend Backend) HandlerOption {
	return func(h *Handler) {
		h.backends[id] = backend
	}
}

// WithCache caches successful replies.
func WithCache(c cache.ReplyCache) HandlerOption {
	return func(h *Handler) {
		h.cache = c
	}
}

// WithCacheScope adds the target language and model to every cache key, so
// replies cached for one language or model are never served for another.
func WithCacheScope(targetLang, model string) HandlerOption {
	return func(h *Handler) {
		h.lang = targetLang
		h.model = model
	}
}

// WithRetry retries backend calls that fail with a retryable
// inplace.ProviderError.
func WithRetry(cfg inplace.RetryConfig) HandlerOption {
	return func(h *Handler) {
		h.retry = cfg
	}
}

// WithFallback replaces the data sent back when a backend fails.
func WithFallback(markup string) HandlerOption {
	return func(h *Handler) {
		h.fallback = markup
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a relay handler. Without WithBackend options it serves
// nothing.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		backends: make(map[inplace.ServiceID]Backend),
		fallback: inplace.FailureMarkup,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Serves reports whether the handler has a backend for id.
func (h *Handler) Serves(id inplace.ServiceID) bool {
	_, ok := h.backends[id]
	return ok
}

// Handle answers one request. The only error it returns is ErrNoBackend;
// backend failures become a fallback reply.
func (h *Handler) Handle(ctx context.Context, req inplace.Request) (inplace.Reply, error) {
	backend, ok := h.backends[req.Name]
	if !ok {
		return inplace.Reply{}, fmt.Errorf("%w %q", ErrNoBackend, req.Name)
	}

	log := h.logger.With(zap.String("service", string(req.Name)))
	key := h.cacheKey(req)

	if h.cache != nil {
		if data, ok := h.cache.Get(ctx, key); ok {
			log.Debug("reply cache hit")
			return inplace.NewReply(data), nil
		}
	}

	data, err := inplace.WithRetry(ctx, h.retryConfig(log), func(ctx context.Context) (string, error) {
		return backend.Translate(ctx, req.Body)
	})
	if err != nil {
		log.Warn("backend call failed, sending fallback", zap.Error(err))
		return inplace.NewReply(h.fallback), nil
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, data); err != nil {
			log.Warn("storing reply in cache", zap.Error(&inplace.CacheError{Message: "set failed", Cause: err}))
		}
	}

	return inplace.NewReply(data), nil
}

func (h *Handler) cacheKey(req inplace.Request) string {
	if h.lang == "" && h.model == "" {
		return inplace.CacheKey(req)
	}
	return inplace.CacheKeyExtended(req, h.lang, h.model)
}

func (h *Handler) retryConfig(log *zap.Logger) inplace.RetryConfig {
	cfg := h.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Info("retrying backend call",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}
	return cfg
}
