package middleware

import "context"

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxWorker contextKey = "worker"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// WorkerFromContext returns the display name of the authenticated user. The
// claim layer records it so services can stamp locks and history snapshots.
func WorkerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWorker).(string); ok {
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

// WithWorker injects the worker name into the context.
func WithWorker(ctx context.Context, worker string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWorker, worker)
}
