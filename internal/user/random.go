// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/samber/oops"
)

// Random value sizes.
const (
	SaltBytes  = 16 // 32 hex chars
	TokenBytes = 32 // 64 hex chars
)

// NewSalt returns a fresh random salt. Every registration gets its own.
func NewSalt() (string, error) {
	return randomHex(SaltBytes)
}

// NewToken returns a fresh opaque session token. Tokens are not stored.
func NewToken() (string, error) {
	return randomHex(TokenBytes)
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code(CodeRandomFailed).
			With("operation", "crypto/rand.Read").
			With("requested_bytes", n).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}
