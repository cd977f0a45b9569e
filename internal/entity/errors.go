// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package entity

import (
	"context"
	"errors"

	"github.com/muvr/profile/internal/user"
)

var (
	// ErrPersistence marks failures of the event log. The command had no
	// effect and may be retried by the caller.
	ErrPersistence = errors.New("event log unavailable")

	// ErrSequenceConflict is wrapped by EventLog implementations when the
	// target position is taken, meaning another writer touched the stream.
	ErrSequenceConflict = errors.New("event sequence conflict")

	// ErrInvalidIdentifier is returned for an empty username.
	ErrInvalidIdentifier = errors.New("invalid entity identifier")

	// ErrRegistryClosed is returned by Submit after Close.
	ErrRegistryClosed = errors.New("entity registry closed")
)

// Error codes attached to returned errors.
const (
	CodeAppendFailed      = "ENTITY_APPEND_FAILED"
	CodeReplayFailed      = "ENTITY_REPLAY_FAILED"
	CodeInvalidIdentifier = "ENTITY_INVALID_ID"
	CodeRegistryClosed    = "ENTITY_REGISTRY_CLOSED"
	CodeSubmitAborted     = "ENTITY_SUBMIT_ABORTED"
)

// Kind classifies command failures for adapters and metrics.
type Kind uint8

const (
	KindOK Kind = iota
	KindNotFound
	KindRejected
	KindLoginFailed
	KindPersistence
	KindUnavailable
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindRejected:
		return "rejected"
	case KindLoginFailed:
		return "login_failed"
	case KindPersistence:
		return "persistence"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// KindOf classifies err. A nil error is KindOK.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, user.ErrNotRegistered):
		return KindNotFound
	case errors.Is(err, user.ErrAlreadyRegistered),
		errors.Is(err, user.ErrInvalidPassword),
		errors.Is(err, ErrInvalidIdentifier):
		return KindRejected
	case errors.Is(err, user.ErrLoginFailed):
		return KindLoginFailed
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrRegistryClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	default:
		return KindInternal
	}
}
