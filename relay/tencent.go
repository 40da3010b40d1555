package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tmt "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tmt/v20180321"

	"github.com/ZaguanLabs/inplace"
)

// Tencent Machine Translation API defaults.
const (
	DefaultTencentEndpoint = "tmt.tencentcloudapi.com"
	DefaultTencentRegion   = "ap-guangzhou"
)

// SDK error codes raised on the client side before an API response is parsed.
const (
	tencentNetworkError    = "ClientError.NetworkError"
	tencentHTTPStatusError = "ClientError.HttpStatusCodeError"
)

// TencentConfig holds configuration for the Tencent Machine Translation
// backend.
type TencentConfig struct {
	SecretID   string
	SecretKey  string
	Region     string        // default: ap-guangzhou
	Endpoint   string        // host or URL (default: tmt.tencentcloudapi.com)
	ProjectID  int64         // TMT project (default: 0)
	TargetLang string        // Target locale (default: zh_CN)
	Timeout    time.Duration // default: 30s
}

// TencentBackend serves the plain-text service.
type TencentBackend struct {
	client    *tmt.Client
	target    string
	projectID int64
}

// NewTencentBackend creates a Tencent backend. Endpoint may be a bare host
// or a URL; a URL's scheme selects HTTP or HTTPS.
func NewTencentBackend(cfg TencentConfig) (*TencentBackend, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, &inplace.ConfigError{Message: "tencent secret id and key are required"}
	}
	if cfg.Region == "" {
		cfg.Region = DefaultTencentRegion
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultTencentEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	cpf := profile.NewClientProfile()
	cpf.HttpProfile.ReqMethod = "POST"
	cpf.HttpProfile.ReqTimeout = int(cfg.Timeout / time.Second)
	cpf.HttpProfile.Endpoint = cfg.Endpoint
	if strings.Contains(cfg.Endpoint, "://") {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" {
			return nil, &inplace.ConfigError{Message: "invalid tencent endpoint " + cfg.Endpoint}
		}
		cpf.HttpProfile.Scheme = strings.ToUpper(u.Scheme)
		cpf.HttpProfile.Endpoint = u.Host
	}

	client, err := tmt.NewClient(common.NewCredential(cfg.SecretID, cfg.SecretKey), cfg.Region, cpf)
	if err != nil {
		return nil, &inplace.ConfigError{Message: "creating tencent client: " + err.Error()}
	}

	target := cfg.TargetLang
	if target == "" {
		target = inplace.DefaultTargetLang
	}

	return &TencentBackend{
		client:    client,
		target:    inplace.TencentCode(target),
		projectID: cfg.ProjectID,
	}, nil
}

// Translate decodes a plain-text body and translates it.
func (b *TencentBackend) Translate(ctx context.Context, body json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(body, &text); err != nil {
		return "", &inplace.ProviderError{Message: "invalid text request body", Cause: err}
	}

	req := tmt.NewTextTranslateRequest()
	req.SourceText = common.StringPtr(text)
	req.Source = common.StringPtr("auto")
	req.Target = common.StringPtr(b.target)
	req.ProjectId = common.Int64Ptr(b.projectID)

	resp, err := b.client.TextTranslateWithContext(ctx, req)
	if err != nil {
		var sdkErr *tcerrors.TencentCloudSDKError
		if errors.As(err, &sdkErr) {
			return "", &inplace.ProviderError{
				Message:   sdkErr.GetCode() + ": " + sdkErr.GetMessage(),
				Cause:     err,
				Retryable: isRetryableTencentCode(sdkErr.GetCode()),
			}
		}
		return "", &inplace.ProviderError{Message: "tencent API call failed", Cause: err, Retryable: true}
	}
	if resp.Response == nil || resp.Response.TargetText == nil {
		return "", &inplace.ProviderError{Message: "tencent response has no TargetText"}
	}

	return *resp.Response.TargetText, nil
}

func isRetryableTencentCode(code string) bool {
	switch code {
	case tencentNetworkError, tencentHTTPStatusError, "FailedOperation.RequestAiError":
		return true
	}
	return strings.HasPrefix(code, "RequestLimitExceeded") ||
		strings.HasPrefix(code, "InternalError")
}

var _ Backend = (*TencentBackend)(nil)
