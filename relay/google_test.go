package relay

import (
	"context"
	"errors"
	"net/http"
	"testing"

	translate "cloud.google.com/go/translate"
	"github.com/ZaguanLabs/inplace"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type fakeGoogleClient struct {
	inputs []string
	target language.Tag
	opts   *translate.Options
	result []translate.Translation
	err    error
	closed bool
}

func (f *fakeGoogleClient) Translate(_ context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error) {
	f.inputs = inputs
	f.target = target
	f.opts = opts
	return f.result, f.err
}

func (f *fakeGoogleClient) Close() error {
	f.closed = true
	return nil
}

func newTestGoogleBackend(t *testing.T, fake *fakeGoogleClient) (*GoogleBackend, *int) {
	t.Helper()
	b, err := NewGoogleBackend(GoogleConfig{APIKey: "key"})
	if err != nil {
		t.Fatalf("NewGoogleBackend failed: %v", err)
	}
	created := 0
	b.newClient = func(context.Context, ...option.ClientOption) (googleTranslator, error) {
		created++
		return fake, nil
	}
	return b, &created
}

func TestGoogleBackend_Translate(t *testing.T) {
	fake := &fakeGoogleClient{result: []translate.Translation{{Text: "<p>你好</p>"}}}
	b, created := newTestGoogleBackend(t, fake)

	got, err := b.Translate(context.Background(), mustBody(t, "<p>Hello</p>"))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "<p>你好</p>" {
		t.Errorf("got %q", got)
	}

	if len(fake.inputs) != 1 || fake.inputs[0] != "<p>Hello</p>" {
		t.Errorf("inputs = %v", fake.inputs)
	}
	if fake.target != language.MustParse("zh-CN") {
		t.Errorf("target = %v", fake.target)
	}
	if fake.opts == nil || fake.opts.Format != translate.HTML {
		t.Errorf("expected HTML format, got %+v", fake.opts)
	}

	if _, err := b.Translate(context.Background(), mustBody(t, "<p>Hello</p>")); err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}
	if *created != 1 {
		t.Errorf("client created %d times, want 1", *created)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !fake.closed {
		t.Error("client not closed")
	}
}

func TestGoogleBackend_Errors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		result    []translate.Translation
		retryable bool
	}{
		{"quota", &googleapi.Error{Code: http.StatusTooManyRequests}, nil, true},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, nil, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, nil, false},
		{"empty", nil, []translate.Translation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestGoogleBackend(t, &fakeGoogleClient{err: tt.err, result: tt.result})
			_, err := b.Translate(context.Background(), mustBody(t, "<p>x</p>"))
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := inplace.IsRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v (%v)", got, tt.retryable, err)
			}
		})
	}
}

func TestGoogleBackend_ClientCreationFails(t *testing.T) {
	b, err := NewGoogleBackend(GoogleConfig{})
	if err != nil {
		t.Fatalf("NewGoogleBackend failed: %v", err)
	}
	b.newClient = func(context.Context, ...option.ClientOption) (googleTranslator, error) {
		return nil, errors.New("no credentials")
	}

	if _, err := b.Translate(context.Background(), mustBody(t, "<p>x</p>")); err == nil {
		t.Fatal("Expected error")
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close without client: %v", err)
	}
}

func TestNewGoogleBackend_InvalidTarget(t *testing.T) {
	if _, err := NewGoogleBackend(GoogleConfig{TargetLang: "not a language!"}); err == nil {
		t.Fatal("Expected error for invalid target language")
	}
}
