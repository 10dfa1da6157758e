package middleware

import (
	"crypto/subtle"
	"net/http"

	"revision-history-server/pkg/response"
)

const InternalTokenHeader = "X-Internal-Token"

// InternalAuthMiddleware guards service-to-service routes with a shared secret.
// An empty secret rejects everything.
func InternalAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(InternalTokenHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				response.Unauthorized(w, "Invalid internal token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
