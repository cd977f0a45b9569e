// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import (
	"encoding/json"

	"github.com/samber/oops"
)

// EventType identifies the kind of event in the log.
type EventType string

const (
	EventTypeRegistered       EventType = "registered"
	EventTypePublicProfileSet EventType = "public_profile_set"
)

// Event is an immutable fact about one user.
type Event interface {
	Type() EventType
	event()
}

// Registered records the credentials created by a Register command.
type Registered struct {
	Algorithm    string `json:"algorithm,omitempty"`
	PasswordHash []byte `json:"passwordHash"`
	PasswordSalt string `json:"passwordSalt"`
}

// PublicProfileSet records a profile replacement.
type PublicProfileSet struct {
	Profile PublicProfile `json:"profile"`
}

// Type implements Event.
func (Registered) Type() EventType { return EventTypeRegistered }

// Type implements Event.
func (PublicProfileSet) Type() EventType { return EventTypePublicProfileSet }

func (Registered) event()       {}
func (PublicProfileSet) event() {}

// EncodeEvent serializes an event payload as JSON.
func EncodeEvent(evt Event) (EventType, []byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", nil, oops.Code(CodeEventEncode).
			With("event_type", string(evt.Type())).
			Wrap(err)
	}
	return evt.Type(), payload, nil
}

// DecodeEvent rebuilds an event from its type and JSON payload.
func DecodeEvent(eventType EventType, payload []byte) (Event, error) {
	switch eventType {
	case EventTypeRegistered:
		var evt Registered
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, oops.Code(CodeEventDecode).With("event_type", string(eventType)).Wrap(err)
		}
		if evt.Algorithm == "" {
			evt.Algorithm = DefaultAlgorithm
		}
		return evt, nil
	case EventTypePublicProfileSet:
		var evt PublicProfileSet
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, oops.Code(CodeEventDecode).With("event_type", string(eventType)).Wrap(err)
		}
		return evt, nil
	default:
		return nil, oops.Code(CodeEventDecode).
			With("event_type", string(eventType)).
			Wrap(ErrUnknownEvent)
	}
}
