package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	translate "cloud.google.com/go/translate"
	"github.com/ZaguanLabs/inplace"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleConfig holds configuration for the Google Cloud Translation backend.
// With neither APIKey nor CredentialsFile set, application default
// credentials are used.
type GoogleConfig struct {
	APIKey          string
	CredentialsFile string
	TargetLang      string // Target locale (default: zh_CN)
	Options         []option.ClientOption
}

type googleTranslator interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
	Close() error
}

// GoogleBackend serves the markup-preserving service. Requests are sent with
// the HTML format so tags survive translation.
type GoogleBackend struct {
	target    language.Tag
	opts      []option.ClientOption
	newClient func(ctx context.Context, opts ...option.ClientOption) (googleTranslator, error)

	mu     sync.Mutex
	client googleTranslator
}

// NewGoogleBackend creates a Google backend. The client is created on first
// use.
func NewGoogleBackend(cfg GoogleConfig) (*GoogleBackend, error) {
	target := cfg.TargetLang
	if target == "" {
		target = inplace.DefaultTargetLang
	}
	tag, err := inplace.LanguageTag(target)
	if err != nil {
		return nil, &inplace.ConfigError{Message: "invalid target language " + target}
	}

	opts := append([]option.ClientOption{}, cfg.Options...)
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	return &GoogleBackend{
		target: tag,
		opts:   opts,
		newClient: func(ctx context.Context, opts ...option.ClientOption) (googleTranslator, error) {
			return translate.NewClient(ctx, opts...)
		},
	}, nil
}

func (b *GoogleBackend) getClient(ctx context.Context) (googleTranslator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		return b.client, nil
	}
	client, err := b.newClient(ctx, b.opts...)
	if err != nil {
		return nil, err
	}
	b.client = client
	return client, nil
}

// Translate decodes a markup body and translates it.
func (b *GoogleBackend) Translate(ctx context.Context, body json.RawMessage) (string, error) {
	var markup string
	if err := json.Unmarshal(body, &markup); err != nil {
		return "", &inplace.ProviderError{Message: "invalid markup request body", Cause: err}
	}

	client, err := b.getClient(ctx)
	if err != nil {
		return "", &inplace.ProviderError{Message: "failed to create Google client", Cause: err}
	}

	translations, err := client.Translate(ctx, []string{markup}, b.target, &translate.Options{
		Format: translate.HTML,
	})
	if err != nil {
		return "", &inplace.ProviderError{
			Message:   "Google translation failed",
			Cause:     err,
			Retryable: isRetryableGoogleError(err),
		}
	}

	if len(translations) == 0 {
		return "", &inplace.ProviderError{Message: "no translation returned", Retryable: true}
	}

	return translations[0].Text, nil
}

// Close releases the underlying client, if one was created.
func (b *GoogleBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func isRetryableGoogleError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}

var _ Backend = (*GoogleBackend)(nil)
