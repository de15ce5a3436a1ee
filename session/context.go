package session

import "context"

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession threads the request's session (possibly nil) through the
// context so handlers never reach for hidden global state.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session placed by the guard, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}
