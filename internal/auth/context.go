package auth

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches a validated session to the context.
// Downstream handlers read claims from here instead of re-decoding
// tokens.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, &sess)
}

// SessionFromContext extracts the validated session from the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	v, ok := ctx.Value(sessionContextKey{}).(*Session)
	if !ok || v == nil {
		return Session{}, false
	}
	return *v, true
}

// HasPermission reports whether the context session carries the
// permission key.
func HasPermission(ctx context.Context, key string) bool {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return false
	}
	for _, p := range sess.Claims.Permissions {
		if p == key {
			return true
		}
	}
	return false
}
