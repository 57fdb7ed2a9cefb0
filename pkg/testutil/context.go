package testutil

import (
	"net/http"
	"time"

	"rosterid/pkg/requestcontext"
)

// Admin header names, duplicated here so tests do not import middleware.
const (
	headerAdminToken = "X-Admin-Token"
	headerAdminUser  = "X-Admin-User"
)

// AsAdmin sets the admin token and, when user is non-empty, the performer.
func AsAdmin(req *http.Request, token, user string) *http.Request {
	req.Header.Set(headerAdminToken, token)
	if user != "" {
		req.Header.Set(headerAdminUser, user)
	}
	return req
}

// WithActor sets the performer directly on the request context, as the
// admin-user middleware would.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
