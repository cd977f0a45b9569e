// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package httpapi exposes the user service over JSON/HTTP.
//
//	POST /user       register     {"username","password"} -> 201 {"username"}
//	PUT  /user       login        {"username","password"} -> 200 {"token"}
//	POST /user/{id}  set profile  {"firstName","lastName","age"} -> 204
//	GET  /user/{id}  get profile  -> 200 {"firstName","lastName","age"}
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/muvr/profile/internal/observability"
	"github.com/muvr/profile/internal/service"
	"github.com/muvr/profile/internal/user"
)

// Service is the adapter the handlers call. *service.Service implements it.
type Service interface {
	Register(ctx context.Context, msg service.RegisterMessage) (string, error)
	Login(ctx context.Context, msg service.LoginMessage) (string, error)
	SetPublicProfile(ctx context.Context, username string, profile user.PublicProfile) error
	GetPublicProfile(ctx context.Context, username string) (user.PublicProfile, bool, error)
}

// Server serves the API.
type Server struct {
	addr    string
	svc     Service
	metrics *observability.Metrics
	logger  *slog.Logger

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a server for addr. metrics may be nil.
func NewServer(addr string, svc Service, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, svc: svc, metrics: metrics, logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "POST /user", s.handleRegister)
	s.route(mux, "PUT /user", s.handleLogin)
	s.route(mux, "POST /user/{id}", s.handleSetProfile)
	s.route(mux, "GET /user/{id}", s.handleGetProfile)
	return mux
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// Start listens and serves in the background. The returned channel yields a
// serve error, if any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.httpServer = srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
			errCh <- err
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop waits for in-flight requests, bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}
	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
