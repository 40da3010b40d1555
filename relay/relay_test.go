package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/cache"
)

func mustBody(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return b
}

func decodeData(t *testing.T, reply inplace.Reply) string {
	t.Helper()
	env, err := reply.Decode()
	if err != nil {
		t.Fatalf("decode reply %q: %v", reply.Message, err)
	}
	return env.Data
}

func TestHandler_Handle(t *testing.T) {
	mock := NewMockBackend()
	h := NewHandler(WithBackend(inplace.ServiceGoogle, mock))

	reply, err := h.Handle(context.Background(), inplace.Request{
		Name: inplace.ServiceGoogle,
		Body: mustBody(t, "<p>Hello</p>"),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if reply.Message != `{"data": "<p>你好</p>"}` {
		t.Errorf("message = %q", reply.Message)
	}
	if mock.CallCount() != 1 {
		t.Errorf("Expected 1 call, got %d", mock.CallCount())
	}
}

func TestHandler_UnknownService(t *testing.T) {
	h := NewHandler(WithBackend(inplace.ServiceGoogle, NewMockBackend()))

	_, err := h.Handle(context.Background(), inplace.Request{
		Name: inplace.ServiceTencent,
		Body: mustBody(t, "Hello"),
	})
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("Expected ErrNoBackend, got %v", err)
	}
	if h.Serves(inplace.ServiceTencent) {
		t.Error("handler should not serve tencent")
	}
}

func TestHandler_BackendFailureBecomesFallback(t *testing.T) {
	mock := NewMockBackend()
	mock.Err = &inplace.ProviderError{Message: "boom"}
	h := NewHandler(WithBackend(inplace.ServiceOpenAI, mock))

	reply, err := h.Handle(context.Background(), inplace.Request{
		Name: inplace.ServiceOpenAI,
		Body: mustBody(t, inplace.GenerativeBody{OpenAIKey: "k", Text: "<span>Hi</span>"}),
	})
	if err != nil {
		t.Fatalf("backend failure must not be a transport error: %v", err)
	}
	if reply.Message != `{"data": "<p>Translation failed.</p>"}` {
		t.Errorf("message = %q", reply.Message)
	}
}

func TestHandler_CustomFallback(t *testing.T) {
	h := NewHandler(
		WithBackend(inplace.ServiceTencent, BackendFunc(func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("down")
		})),
		WithFallback("<em>unavailable</em>"),
	)

	reply, err := h.Handle(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "x")})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := decodeData(t, reply); got != "<em>unavailable</em>" {
		t.Errorf("data = %q", got)
	}
}

func TestHandler_Cache(t *testing.T) {
	mock := NewMockBackend()
	c := cache.NewInMemoryCache(0)
	h := NewHandler(WithBackend(inplace.ServiceTencent, mock), WithCache(c))

	req := inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "Hello")}
	for i := 0; i < 3; i++ {
		reply, err := h.Handle(context.Background(), req)
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		if got := decodeData(t, reply); got != "你好" {
			t.Errorf("call %d: data = %q", i, got)
		}
	}

	if mock.CallCount() != 1 {
		t.Errorf("Expected 1 backend call, got %d", mock.CallCount())
	}
	if v, ok := c.Get(context.Background(), inplace.CacheKey(req)); !ok || v != "你好" {
		t.Errorf("cache entry = %q, %v", v, ok)
	}
}

func TestHandler_CacheScope(t *testing.T) {
	c := cache.NewInMemoryCache(0)
	req := inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "Hello")}

	zh := NewHandler(WithBackend(inplace.ServiceTencent, NewMockBackend()), WithCache(c), WithCacheScope("zh_CN", ""))
	if _, err := zh.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	es := NewMockBackend()
	es.Translations = map[string]string{"Hello": "Hola"}
	h := NewHandler(WithBackend(inplace.ServiceTencent, es), WithCache(c), WithCacheScope("es_ES", ""))
	reply, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if got := decodeData(t, reply); got != "Hola" {
		t.Errorf("Expected reply for the second scope, got %q", got)
	}
	if es.CallCount() != 1 {
		t.Errorf("Expected cache miss across scopes, got %d calls", es.CallCount())
	}
	if _, ok := c.Get(context.Background(), inplace.CacheKeyExtended(req, "zh_CN", "")); !ok {
		t.Error("Expected scoped key in cache")
	}
}

func TestHandler_FailuresNotCached(t *testing.T) {
	mock := NewMockBackend()
	mock.Err = errors.New("down")
	c := cache.NewInMemoryCache(0)
	h := NewHandler(WithBackend(inplace.ServiceTencent, mock), WithCache(c))

	req := inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "Hello")}
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("fallback must not be cached, cache has %d entries", c.Len())
	}
}

func TestHandler_Retry(t *testing.T) {
	calls := 0
	backend := BackendFunc(func(context.Context, json.RawMessage) (string, error) {
		calls++
		if calls < 3 {
			return "", &inplace.ProviderError{Message: "busy", Retryable: true}
		}
		return "ok", nil
	})

	h := NewHandler(
		WithBackend(inplace.ServiceTencent, backend),
		WithRetry(inplace.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}),
	)

	reply, err := h.Handle(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "x")})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := decodeData(t, reply); got != "ok" {
		t.Errorf("data = %q", got)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestHandler_NoRetryByDefault(t *testing.T) {
	calls := 0
	backend := BackendFunc(func(context.Context, json.RawMessage) (string, error) {
		calls++
		return "", &inplace.ProviderError{Message: "busy", Retryable: true}
	})
	h := NewHandler(WithBackend(inplace.ServiceTencent, backend))

	if _, err := h.Handle(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "x")}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestMockBackend_Unknown(t *testing.T) {
	m := NewMockBackend()
	got, err := m.Translate(context.Background(), mustBody(t, "Goodbye"))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "[Goodbye]" {
		t.Errorf("got %q", got)
	}

	m.Reset()
	if m.CallCount() != 0 || m.LastBody() != nil {
		t.Error("Reset should clear state")
	}
}
