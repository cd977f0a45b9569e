// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package service

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/muvr/profile/internal/entity"
)

// Error codes for reserved usernames.
const (
	CodeReservedUsername = "SERVICE_RESERVED_USERNAME"
	CodeInvalidPattern   = "SERVICE_INVALID_RESERVED_PATTERN"
)

type reservedPattern struct {
	pattern string
	glob    glob.Glob
}

// ReservedNames blocks registration of usernames matching any of a set of
// glob patterns. Matching ignores case. The zero value reserves nothing.
type ReservedNames struct {
	patterns []reservedPattern
}

// CompileReserved compiles patterns such as "admin*" or "sys?op". All
// patterns are compiled before any is used.
func CompileReserved(patterns []string) (*ReservedNames, error) {
	compiled := make([]reservedPattern, 0, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return nil, oops.Code(CodeInvalidPattern).With("index", i).Errorf("empty reserved username pattern")
		}
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, oops.Code(CodeInvalidPattern).With("index", i).With("pattern", pattern).Wrap(err)
		}
		compiled = append(compiled, reservedPattern{pattern: pattern, glob: g})
	}
	return &ReservedNames{patterns: compiled}, nil
}

// Check returns an error wrapping entity.ErrInvalidIdentifier if username is
// reserved.
func (r *ReservedNames) Check(username string) error {
	if r == nil {
		return nil
	}
	lower := strings.ToLower(username)
	for _, p := range r.patterns {
		if p.glob.Match(lower) {
			return oops.Code(CodeReservedUsername).
				With("pattern", p.pattern).
				Wrapf(entity.ErrInvalidIdentifier, "username %q is reserved", username)
		}
	}
	return nil
}
