package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "userID"
	ContextTenantKey ctxKey = "tenantID"
	ContextActorKey  ctxKey = "actor"
)

// Actor identifies who performed a privileged mutation.
type Actor struct {
	UserID   string
	UserName string
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// TenantIDFromContext returns the tenant resolved by the permission gate for this request.
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tenantID, ok := ctx.Value(ContextTenantKey).(string); ok {
		return tenantID
	}
	return ""
}

func ContextWithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextTenantKey, tenantID)
}

func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	if actor, ok := ctx.Value(ContextActorKey).(Actor); ok {
		return actor
	}
	return Actor{UserID: UserIDFromContext(ctx)}
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
