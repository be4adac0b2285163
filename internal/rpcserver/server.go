package rpcserver

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/kotobatl/kotoba/internal/observe"
)

// Transport limits and keepalive policy. Screenshots ride the OCR request,
// so the message ceiling is generous.
const (
	maxMessageBytes = 50 << 20

	// Server pings idle connections every 30s; clients may ping at most
	// every 30s, with or without active streams.
	keepaliveInterval = 30 * time.Second
)

// NewServer constructs the gRPC server shared by both variants: message
// limits, keepalive, and the interceptor chain (panic recovery outermost,
// then metrics and call logging).
func NewServer(m *observe.Metrics) *grpc.Server {
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.MaxSendMsgSize(maxMessageBytes),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time: keepaliveInterval,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             keepaliveInterval,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			observe.RecoveryInterceptor(),
			observe.UnaryInterceptor(m),
		),
	)
}

// Listen opens the TCP listener for the server. The sidecar serves a local
// host process, so anything other than a loopback bind is worth a warning.
func Listen(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpcserver: listen on %s: %w", addr, err)
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		slog.Warn("listening on a non-loopback address", "addr", addr)
	}
	return lis, nil
}

// Shutdown stops srv gracefully, waiting up to grace for in-flight calls
// before forcing the remainder down.
func Shutdown(srv *grpc.Server, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		slog.Warn("grace period elapsed, forcing server stop", "grace", grace)
		srv.Stop()
		<-done
	}
}
