package middleware

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cart-service/internal/auth"
	"github.com/fekuna/omnipos-cart-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ContextInterceptor lifts the client id out of the metadata into the context
// and logs every unary call with its outcome.
func ContextInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		clientID := auth.GetClientID(ctx)
		ctx = auth.WithClientID(ctx, clientID)

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("client_id", clientID),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// StreamContextInterceptor is ContextInterceptor for streaming calls.
func StreamContextInterceptor(log logger.ZapLogger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		clientID := auth.GetClientID(ss.Context())
		log.Debug("grpc stream opened", zap.String("method", info.FullMethod), zap.String("client_id", clientID))

		err := handler(srv, &wrappedStream{ServerStream: ss, ctx: auth.WithClientID(ss.Context(), clientID)})
		log.Debug("grpc stream closed",
			zap.String("method", info.FullMethod),
			zap.String("client_id", clientID),
			zap.String("code", status.Code(err).String()),
		)
		return err
	}
}

type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
