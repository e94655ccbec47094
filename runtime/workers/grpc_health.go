package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthWorker exposes grpc.health.v1. The overall status is SERVING
// while the worker runs and NOT_SERVING once shutdown has begun.
type GRPCHealthWorker struct {
	log      *slog.Logger
	listener net.Listener
	server   *grpc.Server
	health   *health.Server
}

func NewGRPCHealthWorker(log *slog.Logger, listener net.Listener) *GRPCHealthWorker {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(log)))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return &GRPCHealthWorker{log: log, listener: listener, server: s, health: h}
}

func (w *GRPCHealthWorker) Run(ctx context.Context) error {
	w.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting gRPC health server", "address", w.listener.Addr().String())
		errChan <- w.server.Serve(w.listener)
	}()

	select {
	case <-ctx.Done():
		w.health.Shutdown()
		w.server.GracefulStop()
		return nil
	case err := <-errChan:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
