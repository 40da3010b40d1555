package inplace

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HashText computes the SHA-256 hash of the trimmed, NFC-normalized text.
func HashText(text string) string {
	trimmed := norm.NFC.String(strings.TrimSpace(text))
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a reply cache key from a request.
func CacheKey(req Request) string {
	return string(req.Name) + ":" + HashText(string(req.Body))
}

// CacheKeyExtended additionally keys on the target language and model, for
// relays serving more than one of either.
func CacheKeyExtended(req Request, targetLang, model string) string {
	return CacheKey(req) + ":" + targetLang + ":" + model
}
