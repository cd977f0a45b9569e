// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

// Command names, used for logging and metrics labels.
const (
	CommandRegister         = "register"
	CommandLogin            = "login"
	CommandSetPublicProfile = "set_public_profile"
	CommandGetPublicProfile = "get_public_profile"
)

// Command is a request against one user. The username is supplied by the
// router, never carried in the command.
type Command interface {
	Name() string
	command()
}

// Register asks to create credentials for an unregistered user.
type Register struct {
	Password string
}

// Login checks a password. It never changes state.
type Login struct {
	Password string
}

// SetPublicProfile replaces the stored public profile.
type SetPublicProfile struct {
	Profile PublicProfile
}

// GetPublicProfile reads the stored public profile.
type GetPublicProfile struct{}

func (Register) Name() string         { return CommandRegister }
func (Login) Name() string            { return CommandLogin }
func (SetPublicProfile) Name() string { return CommandSetPublicProfile }
func (GetPublicProfile) Name() string { return CommandGetPublicProfile }

func (Register) command()         {}
func (Login) command()            {}
func (SetPublicProfile) command() {}
func (GetPublicProfile) command() {}

// Reply is the value handed back for an accepted command.
type Reply interface {
	reply()
}

// Ack acknowledges Register and SetPublicProfile.
type Ack struct{}

// Token is the opaque session token returned by a successful Login.
type Token string

// ProfileView is the reply to GetPublicProfile. Present is false only when
// the absent profile default is in force and no profile was ever set.
type ProfileView struct {
	Profile PublicProfile
	Present bool
}

func (Ack) reply()         {}
func (Token) reply()       {}
func (ProfileView) reply() {}
