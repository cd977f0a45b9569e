// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package entity

import (
	"context"

	"github.com/muvr/profile/internal/user"
)

// StreamPrefix prefixes every user stream name.
const StreamPrefix = "user:"

// StreamName returns the log stream that holds a user's events.
func StreamName(username string) string {
	return StreamPrefix + username
}

// EventLog is the durable, ordered event log the engines depend on.
type EventLog interface {
	// Append durably stores evt at position seq (1-based) of stream.
	// It must fail with an error wrapping ErrSequenceConflict when seq is
	// already taken, and must not return before the event is durable.
	Append(ctx context.Context, stream string, seq uint64, evt user.Event) error

	// Read returns every event of stream in append order. A stream with no
	// events yields an empty slice.
	Read(ctx context.Context, stream string) ([]user.Event, error)
}
