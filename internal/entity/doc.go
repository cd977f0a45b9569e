// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package entity runs user entities: one single-writer engine per username,
// fed through a mailbox, and a registry that routes commands to it.
//
// An engine replays its stream before handling its first command, then for
// each command decides against in-memory state, appends the resulting event
// to the [EventLog], applies it and replies. A failed append leaves state
// untouched. Engines for different usernames share nothing and run in
// parallel; idle engines are passivated and rebuilt from the log on demand.
package entity
