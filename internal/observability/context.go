package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const dispatchIDKey contextKey = "dispatch_id"

func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey, id)
}

func DispatchIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(dispatchIDKey).(string)
	return v
}

// NewDispatchID returns a random identifier for one fan-out.
func NewDispatchID() string {
	return uuid.NewString()
}
