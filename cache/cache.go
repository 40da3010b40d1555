// Package cache provides relay reply caching implementations.
package cache

import "context"

// ReplyCache stores relay reply data keyed by request.
type ReplyCache interface {
	// Get retrieves cached reply data. Returns empty string and false if not
	// found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores reply data in the cache.
	Set(ctx context.Context, key string, value string) error
}

// Enumerable is implemented by caches whose entries can be listed for export.
type Enumerable interface {
	ReplyCache
	// Entries returns all live entries.
	Entries(ctx context.Context) (map[string]string, error)
}
