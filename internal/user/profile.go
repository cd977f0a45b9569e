// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

// PublicProfile is the publicly readable part of a user's data.
// Fields are stored as given; no content rules are applied.
type PublicProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age,omitempty"`
}

// EmptyProfile is the profile of a freshly registered user.
var EmptyProfile = PublicProfile{}
