package shared

import "context"

type sessionContextKey struct{}

type subjectContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithSubject stores a user id authenticated by bearer token.
func ContextWithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, userID)
}

// SubjectFromContext returns the bearer-token user id, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectContextKey{}).(string)
	return id, ok && id != ""
}

// CurrentUserID resolves the acting user from a bearer subject first and the
// session second.
func CurrentUserID(ctx context.Context) (string, bool) {
	if id, ok := SubjectFromContext(ctx); ok {
		return id, true
	}
	if sess := SessionFromContext(ctx); sess != nil && sess.User() != "" {
		return sess.User(), true
	}
	return "", false
}
