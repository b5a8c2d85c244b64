package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxOperator contextKey = "operator"

// ContextOperator is the authenticated operator identity carried on request
// contexts by the auth middleware.
type ContextOperator struct {
	ID   uuid.UUID
	Name string
}

// WithOperator injects the operator identity into the context.
func WithOperator(ctx context.Context, op ContextOperator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperator, op)
}

// OperatorFromContext returns the operator identity seeded by the auth
// middleware, if any.
func OperatorFromContext(ctx context.Context) (ContextOperator, bool) {
	if ctx == nil {
		return ContextOperator{}, false
	}
	op, ok := ctx.Value(ctxOperator).(ContextOperator)
	return op, ok
}
