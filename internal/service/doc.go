// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package service translates external requests into entity commands and
// entity replies back into plain results. It holds no state of its own.
package service
