package middleware

import "context"

type contextKey string

const (
	ctxEmail contextKey = "actor_email"
	ctxRole  contextKey = "actor_role"
)

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, email, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxEmail, email)
	return context.WithValue(ctx, ctxRole, role)
}
