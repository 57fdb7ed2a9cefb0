// Package middleware holds the HTTP middleware shared by the admin surface.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "rosterid/pkg/domain-errors"
	"rosterid/pkg/platform/httputil"
	"rosterid/pkg/requestcontext"
)

const (
	HeaderAdminToken = "X-Admin-Token"
	HeaderAdminUser  = "X-Admin-User"
)

// RequireAdminToken rejects requests whose X-Admin-Token does not match
// expected. An empty expected token rejects everything.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminUser names the performer of any mutation made during the request.
// Without the header the performer is "admin".
func AdminUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(HeaderAdminUser))
		if user == "" {
			user = "admin"
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(r.Context(), user)))
	})
}
