package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/utils"
)

// BearerToken extracts a bearer credential from the Authorization header.
// The second return is false when the header is absent or malformed.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AdminAuth returns a middleware that gates the admin API behind a shared
// token. An empty configured token locks the API entirely rather than
// leaving it open.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := BearerToken(r)
			if !ok {
				utils.WriteError(w, errors.Unauthorized("Missing admin token"))
				return
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				utils.WriteError(w, errors.Unauthorized("Invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
