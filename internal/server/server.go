// Package server exposes secret recovery over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"hashira/internal/ctxlog"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultMaxK         = 256
	defaultMaxPoints    = 512
)

type Server struct {
	addr            string
	handler         http.Handler
	anti            *antidos
	shutdownTimeout time.Duration
}

// New builds the HTTP API. The db must be opened before the server handles requests.
func New(config Config) *Server {
	if config.Port == 0 {
		panic("server: port is required")
	}
	if config.AntidosBuckets == 0 {
		panic("server: antidosBuckets is required")
	}
	if config.AntidosPeriod == 0 {
		panic("server: antidosPeriod is required")
	}
	if config.ShutdownTimeout == 0 {
		panic("server: shutdownTimeout is required")
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	if config.MaxK == 0 {
		config.MaxK = defaultMaxK
	}
	if config.MaxPoints == 0 {
		config.MaxPoints = defaultMaxPoints
	}

	anti := newAntidos(config.AntidosBuckets, config.AntidosPeriod)
	a := &api{
		maxBodyBytes: config.MaxBodyBytes,
		maxK:         config.MaxK,
		maxPoints:    config.MaxPoints,
	}

	mux := http.NewServeMux()
	mux.Handle("POST /recover", anti.middleware(http.HandlerFunc(a.solve)))
	mux.Handle("GET /secrets", anti.middleware(http.HandlerFunc(a.secrets)))
	mux.Handle("GET /secrets/{id}", anti.middleware(http.HandlerFunc(a.secret)))

	handler := http.Handler(mux)
	handler = newRecover(handler)
	handler = logMiddleware(handler)

	return &Server{
		addr:            fmt.Sprintf("0.0.0.0:%d", config.Port),
		handler:         handler,
		anti:            anti,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(ctx context.Context) error {
	logger := ctxlog.Get(ctx)
	defer s.anti.stop()

	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErrCh := make(chan error, 1)
	go func() {
		defer cancel()
		logger.Info("server is running", "addr", s.addr)
		serveErrCh <- srv.ListenAndServe()
	}()

	<-ctx.Done()

	logger.Info("server is shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer stopCancel()
	shutdownErr := srv.Shutdown(stopCtx)

	if errors.Is(shutdownErr, context.DeadlineExceeded) {
		logger.Error("server shutdown timeout exceeded")
	} else if shutdownErr == nil {
		logger.Info("all clients closed successfully")
	}

	serveErr := <-serveErrCh
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	return errors.Join(serveErr, shutdownErr)
}
