// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package store implements the durable event logs behind the entity engines.
package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/user"
)

// Error codes returned by the event logs.
const (
	CodeSequenceConflict = "STORE_SEQUENCE_CONFLICT"
	CodeAppendFailed     = "STORE_APPEND_FAILED"
	CodeReadFailed       = "STORE_READ_FAILED"
	CodeConnectFailed    = "STORE_CONNECT_FAILED"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newID returns a ULID unique within the process and sortable by time.
func newID(now time.Time) ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy)
}

// Record is one stored event in its serialized form.
type Record struct {
	ID        ulid.ULID
	Stream    string
	Seq       uint64
	Type      user.EventType
	Payload   []byte
	CreatedAt time.Time
}

func newRecord(stream string, seq uint64, evt user.Event, now time.Time) (Record, error) {
	eventType, payload, err := user.EncodeEvent(evt)
	if err != nil {
		return Record{}, oops.Code(CodeAppendFailed).With("stream", stream).With("seq", seq).Wrap(err)
	}
	return Record{
		ID:        newID(now),
		Stream:    stream,
		Seq:       seq,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: now,
	}, nil
}

// Event decodes the record back into a domain event.
func (r Record) Event() (user.Event, error) {
	evt, err := user.DecodeEvent(r.Type, r.Payload)
	if err != nil {
		return nil, oops.Code(CodeReadFailed).
			With("stream", r.Stream).
			With("seq", r.Seq).
			With("id", r.ID.String()).
			Wrap(err)
	}
	return evt, nil
}

func sequenceConflict(stream string, seq uint64) error {
	return oops.Code(CodeSequenceConflict).
		With("stream", stream).
		With("seq", seq).
		Wrap(entity.ErrSequenceConflict)
}
