package logging

import (
	"context"

	"go.uber.org/zap"
)

type requestCtxKey struct{}
type ownerCtxKey struct{}

// WithRequestID adds a request id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext extracts the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestCtxKey{}).(string)
	return id
}

// WithOwnerID adds the acting owner's id to the context.
func WithOwnerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, id)
}

// OwnerIDFromContext extracts the owner id, or "".
func OwnerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerCtxKey{}).(string)
	return id
}

// ContextFields extracts correlation fields from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if id := OwnerIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("owner.id", id))
	}
	return fields
}
