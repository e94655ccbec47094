package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServerWorker serves the REST and WebSocket API until the context ends.
type HTTPServerWorker struct {
	log             *slog.Logger
	server          *http.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

// NewHTTPServerWorker takes an already bound listener so that a port
// conflict is reported at startup instead of inside the supervision loop.
func NewHTTPServerWorker(log *slog.Logger, listener net.Listener, handler http.Handler, shutdownTimeout time.Duration) *HTTPServerWorker {
	return &HTTPServerWorker{
		log:             log,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting HTTP server", "address", w.listener.Addr().String())
		errChan <- w.server.Serve(w.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()
		w.log.Info("Shutting down HTTP server")
		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("HTTP server shutdown incomplete", "error", err)
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
