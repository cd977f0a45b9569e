// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors. Returned errors wrap these, so match with errors.Is.
var (
	// ErrNotRegistered is returned for any command other than Register
	// against a user that has not registered.
	ErrNotRegistered = errors.New("user not registered")

	// ErrAlreadyRegistered is returned for Register against a registered user
	// when re-registration is rejected.
	ErrAlreadyRegistered = errors.New("user already registered")

	// ErrLoginFailed is returned when the supplied password does not match.
	ErrLoginFailed = errors.New("login failed")

	// ErrInvalidPassword is returned for Register with an empty password.
	ErrInvalidPassword = errors.New("password cannot be empty")

	// ErrUnknownHasher is returned when a hasher name cannot be resolved.
	ErrUnknownHasher = errors.New("unknown password hasher")

	// ErrUnknownEvent is returned when decoding an unrecognised event type.
	ErrUnknownEvent = errors.New("unknown event type")
)

// Error codes attached to returned errors.
const (
	CodeNotFound          = "USER_NOT_FOUND"
	CodeAlreadyRegistered = "USER_ALREADY_REGISTERED"
	CodeLoginFailed       = "USER_LOGIN_FAILED"
	CodeInvalidPassword   = "USER_INVALID_PASSWORD"
	CodeUnknownCommand    = "USER_UNKNOWN_COMMAND"
	CodeUnknownHasher     = "CONFIG_UNKNOWN_HASHER"
	CodeHashFailed        = "USER_HASH_FAILED"
	CodeRandomFailed      = "USER_RANDOM_FAILED"
	CodeEventDecode       = "USER_EVENT_DECODE_FAILED"
	CodeEventEncode       = "USER_EVENT_ENCODE_FAILED"
)

func errNotRegistered(cmd Command) error {
	return oops.Code(CodeNotFound).
		With("command", cmd.Name()).
		Wrap(ErrNotRegistered)
}

func errAlreadyRegistered() error {
	return oops.Code(CodeAlreadyRegistered).
		With("command", CommandRegister).
		Wrap(ErrAlreadyRegistered)
}

func errLoginFailed() error {
	return oops.Code(CodeLoginFailed).Wrap(ErrLoginFailed)
}
