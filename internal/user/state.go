// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import "bytes"

// Status is the registration status of a user.
type Status uint8

const (
	StatusUnregistered Status = iota
	StatusRegistered
)

func (s Status) String() string {
	switch s {
	case StatusUnregistered:
		return "unregistered"
	case StatusRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// Credentials are the stored password digest and the inputs needed to
// recompute it.
type Credentials struct {
	Algorithm string
	Hash      []byte
	Salt      string
}

// State is a user's durable data. The zero value is the unregistered state.
// Fields are only changed by Apply.
type State struct {
	status      Status
	credentials Credentials
	profile     PublicProfile
	profileSet  bool
}

// Status returns the registration status.
func (s State) Status() Status { return s.status }

// IsRegistered reports whether the user has registered.
func (s State) IsRegistered() bool { return s.status == StatusRegistered }

// Credentials returns the stored credentials; empty when unregistered.
func (s State) Credentials() Credentials {
	c := s.credentials
	c.Hash = bytes.Clone(c.Hash)
	return c
}

// Profile returns the stored profile and whether one was explicitly set
// since the last registration.
func (s State) Profile() (PublicProfile, bool) {
	return s.profile, s.profileSet
}

// Equal reports whether two states hold the same data.
func (s State) Equal(other State) bool {
	return s.status == other.status &&
		s.credentials.Algorithm == other.credentials.Algorithm &&
		bytes.Equal(s.credentials.Hash, other.credentials.Hash) &&
		s.credentials.Salt == other.credentials.Salt &&
		s.profile == other.profile &&
		s.profileSet == other.profileSet
}
