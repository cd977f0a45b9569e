// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/muvr/profile/internal/user"
	"github.com/muvr/profile/pkg/errutil"
)

type request struct {
	ctx  context.Context
	cmd  user.Command
	done chan result
}

type result struct {
	reply user.Reply
	err   error
}

// Engine owns one user's state and processes its commands one at a time on
// a dedicated goroutine. Engines are created and stopped by a Registry.
type Engine struct {
	username string
	stream   string
	log      EventLog
	decider  *user.Decider
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time

	mailbox chan request
	stopped chan struct{}

	// Owned by the run goroutine.
	state  user.State
	seq    uint64
	loaded bool
}

func newEngine(username string, cfg *Config) *Engine {
	return &Engine{
		username: username,
		stream:   StreamName(username),
		log:      cfg.Log,
		decider:  cfg.Decider,
		logger:   cfg.Logger.With("username", username),
		metrics:  cfg.Metrics,
		now:      cfg.Now,
		mailbox:  make(chan request, cfg.MailboxSize),
		stopped:  make(chan struct{}),
	}
}

func (e *Engine) start() {
	e.metrics.engineStarted()
	go e.run()
}

// stop closes the mailbox and waits for queued commands to finish. The
// caller guarantees nothing submits concurrently.
func (e *Engine) stop() {
	close(e.mailbox)
	<-e.stopped
	e.metrics.engineStopped()
}

func (e *Engine) run() {
	defer close(e.stopped)
	for req := range e.mailbox {
		started := e.now()
		res := e.handle(req.ctx, req.cmd)
		e.metrics.observeCommand(req.cmd.Name(), res.err, e.now().Sub(started))
		req.done <- res
	}
}

// enqueue places cmd in the mailbox. ctx bounds only the wait for space:
// once enqueued, a command runs to completion even if the caller leaves, and
// its result arrives on the returned channel.
func (e *Engine) enqueue(ctx context.Context, cmd user.Command) (<-chan result, error) {
	req := request{
		ctx:  context.WithoutCancel(ctx),
		cmd:  cmd,
		done: make(chan result, 1),
	}

	select {
	case e.mailbox <- req:
		return req.done, nil
	case <-ctx.Done():
		return nil, e.aborted(ctx, cmd)
	}
}

func (e *Engine) aborted(ctx context.Context, cmd user.Command) error {
	return oops.Code(CodeSubmitAborted).
		With("username", e.username).
		With("command", cmd.Name()).
		Wrap(ctx.Err())
}

func (e *Engine) handle(ctx context.Context, cmd user.Command) result {
	if !e.loaded {
		if err := e.recover(ctx); err != nil {
			return result{err: err}
		}
	}

	decision, err := e.decider.Decide(e.state, cmd)
	if err != nil {
		return result{err: oops.With("username", e.username).Wrap(err)}
	}

	if decision.Event != nil {
		next := e.seq + 1
		if err := e.log.Append(ctx, e.stream, next, decision.Event); err != nil {
			if errors.Is(err, ErrSequenceConflict) {
				// Another writer advanced the stream; rebuild before the next command.
				e.loaded = false
			}
			wrapped := oops.Code(CodeAppendFailed).
				With("username", e.username).
				With("command", cmd.Name()).
				With("seq", next).
				Wrap(fmt.Errorf("%w: %w", ErrPersistence, err))
			errutil.LogError(ctx, e.logger, "event append failed", wrapped)
			return result{err: wrapped}
		}
		e.metrics.eventAppended(string(decision.Event.Type()))
		e.state = user.Apply(e.state, decision.Event)
		e.seq = next
	}

	return result{reply: decision.Reply}
}

// recover rebuilds state by folding the full stream.
func (e *Engine) recover(ctx context.Context) error {
	events, err := e.log.Read(ctx, e.stream)
	e.metrics.replayed(err)
	if err != nil {
		wrapped := oops.Code(CodeReplayFailed).
			With("username", e.username).
			Wrap(fmt.Errorf("%w: %w", ErrPersistence, err))
		errutil.LogError(ctx, e.logger, "event replay failed", wrapped)
		return wrapped
	}
	e.state = user.Fold(events)
	e.seq = uint64(len(events))
	e.loaded = true
	e.logger.DebugContext(ctx, "entity recovered",
		"events", len(events),
		"status", e.state.Status().String(),
	)
	return nil
}
