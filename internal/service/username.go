// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package service

import (
	"regexp"

	"github.com/samber/oops"

	"github.com/muvr/profile/internal/entity"
)

// Username constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// CodeInvalidUsername marks usernames rejected before reaching an engine.
const CodeInvalidUsername = "SERVICE_INVALID_USERNAME"

// A letter followed by letters, digits or underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername checks username against the account naming rules. The
// error wraps entity.ErrInvalidIdentifier.
func ValidateUsername(username string) error {
	switch {
	case len(username) < MinUsernameLength:
		return oops.Code(CodeInvalidUsername).
			With("min", MinUsernameLength).
			Wrapf(entity.ErrInvalidIdentifier, "username must be at least %d characters", MinUsernameLength)
	case len(username) > MaxUsernameLength:
		return oops.Code(CodeInvalidUsername).
			With("max", MaxUsernameLength).
			Wrapf(entity.ErrInvalidIdentifier, "username must be at most %d characters", MaxUsernameLength)
	case !usernameRegex.MatchString(username):
		return oops.Code(CodeInvalidUsername).
			Wrapf(entity.ErrInvalidIdentifier, "username must start with a letter and contain only letters, digits and underscores")
	}
	return nil
}
