package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/inplace"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the completion model used when none is configured.
const DefaultOpenAIModel = "gpt-3.5-turbo-instruct"

// OpenAIBackend serves the generative service through the OpenAI completions
// endpoint. The API key travels in each request body, so a client is built
// per call.
type OpenAIBackend struct {
	model      string
	baseURL    string
	targetLang string
	httpClient *http.Client
}

// OpenAIConfig holds configuration for the OpenAI backend.
type OpenAIConfig struct {
	Model      string       // Completion model (default: gpt-3.5-turbo-instruct)
	BaseURL    string       // Custom base URL (optional)
	TargetLang string       // Target locale (default: zh_CN)
	HTTPClient *http.Client // Custom HTTP client (optional)
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	target := cfg.TargetLang
	if target == "" {
		target = inplace.DefaultTargetLang
	}

	return &OpenAIBackend{
		model:      model,
		baseURL:    cfg.BaseURL,
		targetLang: target,
		httpClient: cfg.HTTPClient,
	}
}

// Translate decodes a generative request body and asks the model for the
// translation.
func (b *OpenAIBackend) Translate(ctx context.Context, body json.RawMessage) (string, error) {
	var req inplace.GenerativeBody
	if err := json.Unmarshal(body, &req); err != nil {
		return "", &inplace.ProviderError{Message: "invalid generative request body", Cause: err}
	}
	if req.OpenAIKey == "" {
		return "", &inplace.ProviderError{Message: "missing OpenAI API key"}
	}

	config := openai.DefaultConfig(req.OpenAIKey)
	if b.baseURL != "" {
		config.BaseURL = b.baseURL
	}
	if b.httpClient != nil {
		config.HTTPClient = b.httpClient
	}
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateCompletion(ctx, b.completionRequest(req.Text))
	if err != nil {
		return "", &inplace.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &inplace.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return resp.Choices[0].Text, nil
}

// Prompt returns the instruction prepended to the submitted markup.
func (b *OpenAIBackend) Prompt() string {
	return "Translate to " + inplace.GetLanguageName(b.targetLang) +
		", returns the HTML tags in the original text:\n\n"
}

func (b *OpenAIBackend) completionRequest(text string) openai.CompletionRequest {
	return openai.CompletionRequest{
		Model:            b.model,
		Prompt:           b.Prompt() + text,
		Temperature:      0.7,
		MaxTokens:        60,
		TopP:             1.0,
		FrequencyPenalty: 0.0,
		PresencePenalty:  1,
	}
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return true
		case apiErr.HTTPStatusCode >= 500:
			return true
		case apiErr.HTTPStatusCode >= 400:
			return false
		}
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var _ Backend = (*OpenAIBackend)(nil)
