// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/muvr/profile/internal/config"
	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/httpapi"
	"github.com/muvr/profile/internal/logging"
	"github.com/muvr/profile/internal/observability"
	"github.com/muvr/profile/internal/service"
	"github.com/muvr/profile/internal/store"
	"github.com/muvr/profile/internal/user"
)

// serveDeps are the seams tests replace. Zero fields take real implementations.
type serveDeps struct {
	// openLog returns the event log and a close func.
	openLog func(ctx context.Context, cfg config.Config, logger *slog.Logger) (entity.EventLog, func(), error)
	// onReady is called with the API address once traffic is accepted.
	onReady func(apiAddr string)
}

func newServeCmd(opts *rootOptions, deps *serveDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Service: "profiled",
				Version: version,
				Format:  cfg.Log.Format,
				Level:   cfg.Log.Level,
				Writer:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger, deps)
		},
	}
}

func openEventLog(ctx context.Context, cfg config.Config, logger *slog.Logger) (entity.EventLog, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		log, err := store.Connect(ctx, cfg.Store.DatabaseURL, store.ConnectOptions{
			MaxRetries: cfg.Store.ConnectRetries,
			BaseDelay:  cfg.Store.ConnectBaseDelay,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return log, log.Close, nil
	default:
		logger.Warn("using the in-memory event log; events are lost on exit")
		return store.NewMemoryEventLog(), func() {}, nil
	}
}

// runServe wires the process and blocks until ctx ends or a server fails.
func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger, deps *serveDeps) error {
	if deps == nil {
		deps = &serveDeps{}
	}
	if deps.openLog == nil {
		deps.openLog = openEventLog
	}

	decider, err := user.NewDecider(user.DeciderConfig{
		Algorithm: cfg.Hasher.Algorithm,
		Policy:    cfg.UserPolicy(),
	})
	if err != nil {
		return err
	}

	reserved, err := service.CompileReserved(cfg.Service.ReservedUsernames)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	var obsServer *observability.Server
	var entityMetrics *entity.Metrics
	var httpMetrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, ready.Load, logger)
		entityMetrics = entity.NewMetrics(obsServer.Registerer())
		httpMetrics = obsServer.Metrics()
		obsErrs, err := obsServer.Start()
		if err != nil {
			return oops.With("server", "observability").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrs, "observability", logger)
		defer stopServer(obsServer.Stop, cfg, "observability", logger)
	}

	eventLog, closeLog, err := deps.openLog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLog()

	registry, err := entity.NewRegistry(entity.Config{
		Log:         eventLog,
		Decider:     decider,
		Logger:      logger,
		Metrics:     entityMetrics,
		MailboxSize: cfg.Entity.MailboxSize,
		IdleTimeout: cfg.Entity.IdleTimeout,
	})
	if err != nil {
		return err
	}
	// Runs after the API has drained.
	defer func() { _ = registry.Close() }()

	svc := service.New(registry, service.Config{
		LoginFailureAsNotFound: cfg.Service.LoginFailureAsNotFound,
		Reserved:               reserved,
		Logger:                 logger,
	})
	api := httpapi.NewServer(cfg.Server.Addr, svc, httpMetrics, logger)
	apiErrs, err := api.Start()
	if err != nil {
		return oops.With("server", "api").Wrap(err)
	}
	defer stopServer(api.Stop, cfg, "api", logger)

	ready.Store(true)
	logger.Info("profiled ready",
		"addr", api.Addr(),
		"store", cfg.Store.Driver,
		"hasher", cfg.Hasher.Algorithm,
		"reregistration", cfg.Policy.Reregistration,
		"profile_default", cfg.Policy.ProfileDefault,
	)
	if deps.onReady != nil {
		deps.onReady(api.Addr())
	}

	select {
	case err, ok := <-apiErrs:
		if ok && err != nil {
			return oops.With("server", "api").Wrap(err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	ready.Store(false)
	return nil
}

func stopServer(stop func(context.Context) error, cfg config.Config, name string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Warn("server did not stop cleanly", "server", name, "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errs <-chan error, name string, logger *slog.Logger) {
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			logger.Error("server failed, shutting down", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
