package ctxutil

import "context"

// userIDKeyType is private to avoid collisions with other context keys.
type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUserID injects the authenticated user id into ctx. Meant to be called
// from the auth middleware after a token validates.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the user id from ctx.
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(userIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
