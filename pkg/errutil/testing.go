// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails t unless err is an oops error whose innermost code
// is code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err)
	_, ok := oops.AsOops(err)
	require.Truef(t, ok, "want an oops error with code %s, got %T: %v", code, err, err)
	assert.Equalf(t, code, Code(err), "error: %v", err)
}

// AssertErrorContext fails t unless the merged oops context of err holds
// key with value.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want an oops error with %s in context, got %T: %v", key, err, err)
	got, found := oopsErr.Context()[key]
	require.Truef(t, found, "context key %s missing from %v", key, oopsErr.Context())
	assert.Equal(t, value, got)
}

// AssertCodedSentinel fails t unless err carries code and wraps target.
func AssertCodedSentinel(t testing.TB, err error, code string, target error) {
	t.Helper()
	AssertErrorCode(t, err, code)
	assert.ErrorIs(t, err, target)
}
