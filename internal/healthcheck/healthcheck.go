// Package healthcheck serves the liveness endpoint for the drainer.
package healthcheck

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	port int
}

func NewServer(port int) *Server {
	return &Server{port: port}
}

func (hs *Server) handle(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// ListenAndServe runs until ctx is done, then shuts down gracefully.
func (hs *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health-check", hs.handle)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", hs.port),
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		return fmt.Errorf("health-check server shutdown failed: %w", err)
	}

	return nil
}
