package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultHTTPTimeout bounds a single HTTP send.
	DefaultHTTPTimeout = 60 * time.Second

	maxRequestBytes = 1 << 20
	requestIDHeader = "X-Request-Id"
)

// HTTPChannel sends requests to a relay Server over HTTP.
type HTTPChannel struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPChannel.
type HTTPOption func(*HTTPChannel)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPChannel) {
		if client != nil {
			c.client = client
		}
	}
}

// NewHTTPChannel creates a channel posting to url.
func NewHTTPChannel(url string, opts ...HTTPOption) *HTTPChannel {
	c := &HTTPChannel{
		url:    url,
		client: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send implements inplace.Channel.
func (c *HTTPChannel) Send(ctx context.Context, req inplace.Request) (inplace.Reply, error) {
	var body bytes.Buffer
	if err := encodeJSON(&body, req); err != nil {
		return inplace.Reply{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return inplace.Reply{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", inplace.UserAgent())
	httpReq.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return inplace.Reply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return inplace.Reply{}, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var reply inplace.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return inplace.Reply{}, fmt.Errorf("decoding reply: %w", err)
	}
	return reply, nil
}

// Server exposes a Handler over HTTP. It accepts POSTed request envelopes
// and answers with reply envelopes.
type Server struct {
	handler *Handler
	logger  *zap.Logger
}

// NewServer creates an HTTP relay server.
func NewServer(h *Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{handler: h, logger: logger}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := s.logger.With(zap.String("request_id", requestID))

	var req inplace.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		log.Debug("rejecting malformed request", zap.Error(err))
		http.Error(w, "malformed request envelope", http.StatusBadRequest)
		return
	}

	reply, err := s.handler.Handle(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoBackend) {
			status = http.StatusNotFound
		}
		log.Warn("request not handled", zap.String("service", string(req.Name)), zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(requestIDHeader, requestID)
	if err := encodeJSON(w, reply); err != nil {
		log.Warn("writing reply", zap.Error(err))
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var (
	_ inplace.Channel = (*HTTPChannel)(nil)
	_ http.Handler    = (*Server)(nil)
)
