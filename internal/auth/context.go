package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const ClientIDHeader = "x-client-id"

type clientIDKey struct{}

func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// GetClientID returns the caller's id as set by the interceptor, falling back
// to the raw request metadata. Anonymous callers get "".
func GetClientID(ctx context.Context) string {
	if val, ok := ctx.Value(clientIDKey{}).(string); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(ClientIDHeader); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
