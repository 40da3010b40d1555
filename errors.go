package inplace

import "fmt"

// ConfigError indicates a programming or configuration defect, such as an
// unknown service identifier or a missing credential. It is the only error
// the overlay returns to its caller.
type ConfigError struct {
	Message string
	Service string
}

func (e *ConfigError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("config error: %s: %q", e.Message, e.Service)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// TransportError indicates the dispatch channel could not deliver a request
// or did not produce a reply.
type TransportError struct {
	Service ServiceID
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error (%s): %v", e.Service, e.Cause)
	}
	return fmt.Sprintf("transport error (%s)", e.Service)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ReplyError indicates a reply that could not be decoded or committed.
type ReplyError struct {
	Message string
	Cause   error
	Service ServiceID
}

func (e *ReplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reply error (%s): %s: %v", e.Service, e.Message, e.Cause)
	}
	return fmt.Sprintf("reply error (%s): %s", e.Service, e.Message)
}

func (e *ReplyError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a backend failure inside the relay (API error,
// bad credentials, upstream timeout).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// DocumentError indicates a page that could not be parsed or rendered.
type DocumentError struct {
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("document error: %s", e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}
