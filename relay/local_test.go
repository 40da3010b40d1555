package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ZaguanLabs/inplace"
)

func TestLocalChannel_Send(t *testing.T) {
	h := NewHandler(WithBackend(inplace.ServiceTencent, NewMockBackend()))
	ch := NewLocalChannel(h)

	reply, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "World")})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := decodeData(t, reply); got != "世界" {
		t.Errorf("data = %q", got)
	}
}

func TestLocalChannel_BodyIsCopied(t *testing.T) {
	mock := NewMockBackend()
	ch := NewLocalChannel(NewHandler(WithBackend(inplace.ServiceTencent, mock)))

	body := mustBody(t, "Hello")
	if _, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: body}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	body[1] = 'J'

	if string(mock.LastBody()) != `"Hello"` {
		t.Errorf("backend saw caller mutation: %s", mock.LastBody())
	}
}

func TestLocalChannel_UnknownService(t *testing.T) {
	ch := NewLocalChannel(NewHandler())
	_, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceGoogle, Body: mustBody(t, "x")})
	if !errors.Is(err, ErrNoBackend) {
		t.Errorf("Expected ErrNoBackend, got %v", err)
	}
}

func TestLocalChannel_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	slow := BackendFunc(func(ctx context.Context, _ json.RawMessage) (string, error) {
		<-release
		return "late", nil
	})
	ch := NewLocalChannel(NewHandler(WithBackend(inplace.ServiceTencent, slow)), WithLocalTimeout(10*time.Millisecond))

	_, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceTencent, Body: mustBody(t, "x")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
