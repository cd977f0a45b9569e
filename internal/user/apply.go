// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import "bytes"

// Apply returns the state that results from evt. It is pure: the same state
// and event always give the same result.
func Apply(s State, evt Event) State {
	switch e := evt.(type) {
	case Registered:
		algorithm := e.Algorithm
		if algorithm == "" {
			algorithm = DefaultAlgorithm
		}
		return State{
			status: StatusRegistered,
			credentials: Credentials{
				Algorithm: algorithm,
				Hash:      bytes.Clone(e.PasswordHash),
				Salt:      e.PasswordSalt,
			},
			profile: EmptyProfile,
		}
	case PublicProfileSet:
		s.profile = e.Profile
		s.profileSet = true
		return s
	default:
		return s
	}
}

// Fold replays events in order starting from the unregistered state.
func Fold(events []Event) State {
	var s State
	for _, evt := range events {
		s = Apply(s, evt)
	}
	return s
}
