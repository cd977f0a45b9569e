// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package store

import (
	"context"
	"sync"
	"time"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/user"
)

// MemoryEventLog is an in-process EventLog. Events are serialized on append
// so replay goes through the same codec as the Postgres log. Nothing survives
// a restart.
type MemoryEventLog struct {
	mu      sync.RWMutex
	streams map[string][]Record
	now     func() time.Time
}

var _ entity.EventLog = (*MemoryEventLog)(nil)

// NewMemoryEventLog returns an empty log.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{
		streams: make(map[string][]Record),
		now:     time.Now,
	}
}

// Append stores evt at seq, which must be exactly one past the stream's last
// position.
func (l *MemoryEventLog) Append(ctx context.Context, stream string, seq uint64, evt user.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := newRecord(stream, seq, evt, l.now())
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	records := l.streams[stream]
	if seq != uint64(len(records))+1 {
		return sequenceConflict(stream, seq)
	}
	l.streams[stream] = append(records, rec)
	return nil
}

// Read returns the stream's events in order.
func (l *MemoryEventLog) Read(ctx context.Context, stream string) ([]user.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	records := l.streams[stream]
	l.mu.RUnlock()

	events := make([]user.Event, 0, len(records))
	for _, rec := range records {
		evt, err := rec.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// Records returns a copy of the raw records of stream.
func (l *MemoryEventLog) Records(stream string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Record(nil), l.streams[stream]...)
}
