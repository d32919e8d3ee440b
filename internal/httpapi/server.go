// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package httpapi exposes the auth service over a JSON HTTP API.
//
// Endpoints:
//
//	POST   /api/auth/register  {username, password} -> 201 account view
//	POST   /api/auth/login     {username, password} -> 200 session
//	PUT    /api/auth/password  {new_password} + bearer token -> 200 session
//	DELETE /api/auth/account   bearer token -> 204
//
// Error bodies carry {timestamp, status, error, message, path}. The
// service's error codes map onto HTTP statuses here; the core never
// learns about wire statuses.
package httpapi

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/observability"
)

// Server serves the auth HTTP API.
type Server struct {
	addr       string
	svc        *auth.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
	tlsConfig  *tls.Config
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil; logger falls back
// to slog.Default when nil.
func NewServer(addr string, svc *auth.Service, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, svc: svc, metrics: metrics, logger: logger}, nil
}

// WithTLS serves the API over TLS with the given config. Must be called
// before Start.
func (s *Server) WithTLS(cfg *tls.Config) *Server {
	s.tlsConfig = cfg
	return s
}

// Handler returns the routed handler with middleware applied. Exposed so
// tests can drive the API through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("PUT /api/auth/password", s.handleRotatePassword)
	mux.HandleFunc("DELETE /api/auth/account", s.handleDeleteAccount)
	return s.withRequestLog(mux)
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after startup; the channel is closed
// when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String(), "tls", s.tlsConfig != nil)
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
