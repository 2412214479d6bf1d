// Package server turns a gqlgen executable schema and a session
// provider into mounted HTTP routes, carrying the request, the database
// session, and optional caller claims through the resolver context.
package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/patisson/gqlpg/session"
)

type contextKey string

const (
	requestKey       contextKey = "request"
	sessionKey       contextKey = "session"
	serviceClaimsKey contextKey = "serviceClaims"
	userClaimsKey    contextKey = "userClaims"
)

// Claims carries the verified identity of a caller, either a peer
// service or an end user. Both slots on the context default to absent.
type Claims struct {
	Subject uuid.UUID
	Service string
	Roles   []string
}

// WithRequest returns a context carrying the inbound HTTP request.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// RequestFromContext retrieves the inbound HTTP request, if any.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey).(*http.Request)
	return r, ok
}

// WithSession returns a context carrying the request's database session.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext retrieves the request's database session, if any.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

// WithServiceClaims returns a context carrying the calling service's
// claims.
func WithServiceClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, serviceClaimsKey, c)
}

// ServiceClaimsFromContext retrieves the calling service's claims, if
// present.
func ServiceClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(serviceClaimsKey).(Claims)
	return c, ok
}

// WithUserClaims returns a context carrying the end user's claims.
func WithUserClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, c)
}

// UserClaimsFromContext retrieves the end user's claims, if present.
func UserClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(userClaimsKey).(Claims)
	return c, ok
}
