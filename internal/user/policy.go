// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import "github.com/samber/oops"

// Reregistration decides what Register does for a registered user.
type Reregistration string

const (
	// ReregistrationReject refuses the command with ErrAlreadyRegistered.
	ReregistrationReject Reregistration = "reject"
	// ReregistrationReset replaces the credentials and clears the profile.
	ReregistrationReset Reregistration = "reset"
)

// ProfileDefault decides what GetPublicProfile reports before any profile
// was set.
type ProfileDefault string

const (
	// ProfileDefaultEmpty reports the empty profile as present.
	ProfileDefaultEmpty ProfileDefault = "empty"
	// ProfileDefaultAbsent reports the profile as not present.
	ProfileDefaultAbsent ProfileDefault = "absent"
)

// Policy holds the behaviour choices the domain leaves open.
type Policy struct {
	Reregistration Reregistration
	ProfileDefault ProfileDefault
}

// DefaultPolicy rejects re-registration and reports an empty profile.
func DefaultPolicy() Policy {
	return Policy{
		Reregistration: ReregistrationReject,
		ProfileDefault: ProfileDefaultEmpty,
	}
}

// Validate checks that every field holds a known value.
func (p Policy) Validate() error {
	switch p.Reregistration {
	case ReregistrationReject, ReregistrationReset:
	default:
		return oops.Code("CONFIG_INVALID").
			With("reregistration", string(p.Reregistration)).
			Errorf("reregistration policy must be %q or %q", ReregistrationReject, ReregistrationReset)
	}
	switch p.ProfileDefault {
	case ProfileDefaultEmpty, ProfileDefaultAbsent:
	default:
		return oops.Code("CONFIG_INVALID").
			With("profile_default", string(p.ProfileDefault)).
			Errorf("profile default policy must be %q or %q", ProfileDefaultEmpty, ProfileDefaultAbsent)
	}
	return nil
}
