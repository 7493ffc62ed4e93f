package auth

import "context"

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the user a session resolved to.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the resolved user, or "" for an unauthenticated request.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
