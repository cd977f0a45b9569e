// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import (
	"crypto"
	// Registers SHA-512 with the crypto package.
	_ "crypto/sha512"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Hasher algorithm names, as recorded in Registered events.
const (
	AlgorithmSHA512   = "sha512"
	AlgorithmArgon2id = "argon2id"
)

// DefaultAlgorithm is used when no algorithm is configured and for events
// written before the algorithm was recorded.
const DefaultAlgorithm = AlgorithmSHA512

// Fixed argon2id parameters. Changing them invalidates stored digests, so a
// new parameter set needs a new algorithm name.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 64
)

// Hasher computes a password digest from a salt and a clear-text password.
// Implementations are pure and deterministic.
type Hasher interface {
	// Algorithm returns the name stored alongside digests.
	Algorithm() string

	// Hash returns the digest of salt and password.
	Hash(salt, password string) ([]byte, error)
}

// NewHasher resolves a hasher by algorithm name. An empty name selects
// DefaultAlgorithm. Failure here is a configuration error.
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case "", AlgorithmSHA512:
		if !crypto.SHA512.Available() {
			return nil, oops.Code(CodeUnknownHasher).
				With("algorithm", AlgorithmSHA512).
				Wrapf(ErrUnknownHasher, "digest primitive unavailable")
		}
		return SHA512Hasher{}, nil
	case AlgorithmArgon2id:
		return Argon2idHasher{}, nil
	default:
		return nil, oops.Code(CodeUnknownHasher).
			With("algorithm", algorithm).
			Wrap(ErrUnknownHasher)
	}
}

// SHA512Hasher digests salt‖password with a single SHA-512 pass.
// It applies no work factor; prefer Argon2idHasher for new deployments.
type SHA512Hasher struct{}

// Algorithm implements Hasher.
func (SHA512Hasher) Algorithm() string { return AlgorithmSHA512 }

// Hash implements Hasher.
func (SHA512Hasher) Hash(salt, password string) ([]byte, error) {
	h := crypto.SHA512.New()
	if _, err := h.Write([]byte(salt + password)); err != nil {
		return nil, oops.Code(CodeHashFailed).Wrap(err)
	}
	return h.Sum(nil), nil
}

// Argon2idHasher derives the digest with argon2id using the salt bytes.
type Argon2idHasher struct{}

// Algorithm implements Hasher.
func (Argon2idHasher) Algorithm() string { return AlgorithmArgon2id }

// Hash implements Hasher.
func (Argon2idHasher) Hash(salt, password string) ([]byte, error) {
	return argon2.IDKey([]byte(password), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
}
