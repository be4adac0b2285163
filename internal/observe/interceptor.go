package observe

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryInterceptor returns a [grpc.UnaryServerInterceptor] that:
//
//  1. Starts an OTel span for the RPC.
//  2. Tracks in-flight calls and records the per-method request counter.
//  3. Logs call completion with status and duration.
func UnaryInterceptor(m *Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		ctx, span := StartSpan(ctx, "RPC "+info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("rpc.method", info.FullMethod)),
		)
		defer span.End()

		m.InFlight.Add(ctx, 1)
		defer m.InFlight.Add(ctx, -1)

		resp, err := handler(ctx, req)

		st := status.Code(err)
		m.RecordRequest(ctx, info.FullMethod, st.String())

		lvl := slog.LevelDebug
		if err != nil {
			lvl = slog.LevelWarn
		}
		Logger(ctx).LogAttrs(ctx, lvl, "rpc completed",
			slog.String("method", info.FullMethod),
			slog.String("status", st.String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// RecoveryInterceptor returns a [grpc.UnaryServerInterceptor] that converts
// handler panics into Internal errors after logging the full stack trace.
// Without it a single bad request could take the whole sidecar down silently.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in rpc handler",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				err = status.Errorf(codes.Internal, "internal error in %s", info.FullMethod)
			}
		}()
		return handler(ctx, req)
	}
}
