// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package user holds the event-sourced user entity: its state, the commands a
// caller may issue, the events those commands produce, and the pure functions
// that connect them.
//
// # State machine
//
// A user is either unregistered or registered. [Decider.Decide] is the single
// dispatch function over every (state, command) pair and returns a [Decision]
// carrying at most one [Event] and the reply for the caller. [Apply] and
// [Fold] are the only way state changes:
//
//	state := user.Fold(events)
//	decision, err := decider.Decide(state, user.Login{Password: "secret1"})
//
// Decide never mutates state and never performs I/O; persisting the event and
// applying it afterwards is the job of the entity engine.
//
// # Credentials
//
// Passwords are hashed with a per-registration random salt by a [Hasher]
// selected by name. The algorithm name travels inside the [Registered] event
// so replay always verifies logins with the hasher that produced the digest.
package user
