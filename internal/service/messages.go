// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package service

// RegisterMessage is the body of a registration request.
type RegisterMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMessage is the body of a login request.
type LoginMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
