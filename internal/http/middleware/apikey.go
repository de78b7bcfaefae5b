package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader carries the caller's key.
const APIKeyHeader = "X-API-Key"

// APIKey accepts requests whose x-api-key header (or ?key= for WebSocket
// clients that cannot set headers) matches one of keys. With no keys
// configured every request is rejected.
func APIKey(keys []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			valid = append(valid, []byte(k))
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if got == "" {
				got = strings.TrimSpace(r.URL.Query().Get("key"))
			}
			if got == "" || !keyMatches(valid, []byte(got)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid API Key"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keyMatches compares against every key in constant time.
func keyMatches(valid [][]byte, got []byte) bool {
	match := 0
	for _, k := range valid {
		match |= subtle.ConstantTimeCompare(k, got)
	}
	return match == 1
}
