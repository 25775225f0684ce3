package printshop

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session id on the provided context.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}

// SessionIDFrom extracts the session id from the context, if present.
func SessionIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(sessionContextKey{}).(string); ok {
		return id
	}
	return ""
}
