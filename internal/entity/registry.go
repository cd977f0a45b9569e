// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package entity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/muvr/profile/internal/user"
)

// Default registry settings.
const (
	DefaultMailboxSize = 64
	DefaultIdleTimeout = 10 * time.Minute
)

// Config configures a Registry. Log and Decider are required.
type Config struct {
	Log     EventLog
	Decider *user.Decider
	Logger  *slog.Logger
	Metrics *Metrics

	// MailboxSize bounds the commands queued per engine before Submit blocks.
	MailboxSize int

	// IdleTimeout passivates engines with no traffic for this long.
	// Zero or negative keeps engines in memory until Evict or Close.
	IdleTimeout time.Duration

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

type handle struct {
	engine   *Engine
	inflight int
	lastUsed time.Time
}

// Registry maps usernames to their single live Engine. It is safe for
// concurrent use.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	engines map[string]*handle
	closed  bool

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// NewRegistry validates cfg and returns a running Registry. Call Close to
// stop its engines.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		return nil, oops.Code("ENTITY_INVALID_CONFIG").Errorf("event log is required")
	}
	if cfg.Decider == nil {
		return nil, oops.Code("ENTITY_INVALID_CONFIG").Errorf("decider is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultMailboxSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := &Registry{
		cfg:     cfg,
		engines: make(map[string]*handle),
	}
	if cfg.IdleTimeout > 0 {
		r.stopJanitor = make(chan struct{})
		r.janitorDone = make(chan struct{})
		go r.janitor(cfg.IdleTimeout)
	}
	return r, nil
}

// Submit routes cmd to the engine for username, creating it on first use,
// and returns the engine's reply unchanged.
func (r *Registry) Submit(ctx context.Context, username string, cmd user.Command) (user.Reply, error) {
	if username == "" {
		return nil, oops.Code(CodeInvalidIdentifier).Wrap(ErrInvalidIdentifier)
	}
	if cmd == nil {
		return nil, oops.Code(user.CodeUnknownCommand).With("username", username).Errorf("command is required")
	}

	h, err := r.acquire(username)
	if err != nil {
		return nil, err
	}

	done, err := h.engine.enqueue(ctx, cmd)
	if err != nil {
		r.release(h)
		return nil, err
	}

	select {
	case res := <-done:
		r.release(h)
		return res.reply, res.err
	case <-ctx.Done():
		// The command still runs. The engine stays pinned until it replies so
		// it cannot be passivated while its event is pending.
		go func() {
			<-done
			r.release(h)
		}()
		return nil, h.engine.aborted(ctx, cmd)
	}
}

func (r *Registry) acquire(username string) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, oops.Code(CodeRegistryClosed).With("username", username).Wrap(ErrRegistryClosed)
	}
	h, ok := r.engines[username]
	if !ok {
		h = &handle{engine: newEngine(username, &r.cfg)}
		h.engine.start()
		r.engines[username] = h
		r.cfg.Logger.Debug("entity engine started", "username", username)
	}
	h.inflight++
	return h, nil
}

func (r *Registry) release(h *handle) {
	r.mu.Lock()
	h.inflight--
	h.lastUsed = r.cfg.Now()
	stop := r.closed && h.inflight == 0
	r.mu.Unlock()

	// Close skips engines with commands in flight; the last one out stops it.
	if stop {
		h.engine.stop()
	}
}

// Evict stops the engine for username if it is idle. The next command
// rebuilds it from the log. It reports whether an engine was stopped.
func (r *Registry) Evict(username string) bool {
	r.mu.Lock()
	h, ok := r.engines[username]
	if !ok || h.inflight > 0 {
		r.mu.Unlock()
		return false
	}
	delete(r.engines, username)
	r.mu.Unlock()

	h.engine.stop()
	r.cfg.Logger.Debug("entity engine passivated", "username", username)
	return true
}

// Len returns the number of live engines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// passivateIdle stops engines unused since before now-timeout.
func (r *Registry) passivateIdle(now time.Time, timeout time.Duration) int {
	r.mu.Lock()
	var idle []*handle
	for username, h := range r.engines {
		if h.inflight == 0 && now.Sub(h.lastUsed) >= timeout {
			idle = append(idle, h)
			delete(r.engines, username)
		}
	}
	r.mu.Unlock()

	for _, h := range idle {
		h.engine.stop()
	}
	if len(idle) > 0 {
		r.cfg.Logger.Debug("entity engines passivated", "count", len(idle))
	}
	return len(idle)
}

func (r *Registry) janitor(timeout time.Duration) {
	defer close(r.janitorDone)
	ticker := time.NewTicker(max(timeout/2, 10*time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.passivateIdle(r.cfg.Now(), timeout)
		case <-r.stopJanitor:
			return
		}
	}
}

// Close rejects new commands and stops every engine once its in-flight
// commands complete. It is safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	var idle []*handle
	for username, h := range r.engines {
		if h.inflight == 0 {
			idle = append(idle, h)
		}
		delete(r.engines, username)
	}
	r.mu.Unlock()

	if r.stopJanitor != nil {
		close(r.stopJanitor)
		<-r.janitorDone
	}
	for _, h := range idle {
		h.engine.stop()
	}
	return nil
}
