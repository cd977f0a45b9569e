// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user

import (
	"crypto/subtle"

	"github.com/samber/oops"
)

// Decision is the outcome of an accepted command: at most one event to
// persist, and the reply to release once it is persisted.
type Decision struct {
	Event Event
	Reply Reply
}

// DeciderConfig configures a Decider. Zero fields take defaults.
type DeciderConfig struct {
	// Algorithm names the hasher used for new registrations.
	Algorithm string
	Policy    Policy

	// Salts and Tokens override the random sources, mainly for tests.
	Salts  func() (string, error)
	Tokens func() (string, error)
}

// Decider turns commands into decisions against a given state.
type Decider struct {
	hasher Hasher
	policy Policy
	salts  func() (string, error)
	tokens func() (string, error)
}

// NewDecider validates cfg and returns a Decider. Errors are configuration
// failures and should stop the process.
func NewDecider(cfg DeciderConfig) (*Decider, error) {
	hasher, err := NewHasher(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	policy := cfg.Policy
	if policy.Reregistration == "" {
		policy.Reregistration = ReregistrationReject
	}
	if policy.ProfileDefault == "" {
		policy.ProfileDefault = ProfileDefaultEmpty
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	d := &Decider{
		hasher: hasher,
		policy: policy,
		salts:  cfg.Salts,
		tokens: cfg.Tokens,
	}
	if d.salts == nil {
		d.salts = NewSalt
	}
	if d.tokens == nil {
		d.tokens = NewToken
	}
	return d, nil
}

// Policy returns the policy in force.
func (d *Decider) Policy() Policy { return d.policy }

// Decide handles cmd against s. Rejections are returned as errors and carry
// no event.
func (d *Decider) Decide(s State, cmd Command) (Decision, error) {
	switch s.status {
	case StatusUnregistered:
		return d.decideUnregistered(cmd)
	case StatusRegistered:
		return d.decideRegistered(s, cmd)
	default:
		return Decision{}, oops.With("status", s.status.String()).Errorf("unknown user status")
	}
}

func (d *Decider) decideUnregistered(cmd Command) (Decision, error) {
	switch c := cmd.(type) {
	case Register:
		return d.register(c)
	case Login, SetPublicProfile, GetPublicProfile:
		return Decision{}, errNotRegistered(cmd)
	default:
		return Decision{}, unknownCommand(cmd)
	}
}

func (d *Decider) decideRegistered(s State, cmd Command) (Decision, error) {
	switch c := cmd.(type) {
	case Register:
		if d.policy.Reregistration == ReregistrationReset {
			return d.register(c)
		}
		return Decision{}, errAlreadyRegistered()
	case Login:
		return d.login(s, c)
	case SetPublicProfile:
		return Decision{
			Event: PublicProfileSet{Profile: c.Profile},
			Reply: Ack{},
		}, nil
	case GetPublicProfile:
		profile, set := s.Profile()
		return Decision{Reply: ProfileView{
			Profile: profile,
			Present: set || d.policy.ProfileDefault == ProfileDefaultEmpty,
		}}, nil
	default:
		return Decision{}, unknownCommand(cmd)
	}
}

func (d *Decider) register(c Register) (Decision, error) {
	if c.Password == "" {
		return Decision{}, oops.Code(CodeInvalidPassword).Wrap(ErrInvalidPassword)
	}
	salt, err := d.salts()
	if err != nil {
		return Decision{}, oops.With("operation", "generate salt").Wrap(err)
	}
	hash, err := d.hasher.Hash(salt, c.Password)
	if err != nil {
		return Decision{}, oops.With("operation", "hash password").Wrap(err)
	}
	return Decision{
		Event: Registered{
			Algorithm:    d.hasher.Algorithm(),
			PasswordHash: hash,
			PasswordSalt: salt,
		},
		Reply: Ack{},
	}, nil
}

func (d *Decider) login(s State, c Login) (Decision, error) {
	creds := s.credentials
	hasher, err := NewHasher(creds.Algorithm)
	if err != nil {
		return Decision{}, err
	}
	computed, err := hasher.Hash(creds.Salt, c.Password)
	if err != nil {
		return Decision{}, oops.With("operation", "hash password").Wrap(err)
	}
	if subtle.ConstantTimeCompare(computed, creds.Hash) != 1 {
		return Decision{}, errLoginFailed()
	}
	token, err := d.tokens()
	if err != nil {
		return Decision{}, oops.With("operation", "generate token").Wrap(err)
	}
	return Decision{Reply: Token(token)}, nil
}

func unknownCommand(cmd Command) error {
	name := "<nil>"
	if cmd != nil {
		name = cmd.Name()
	}
	return oops.Code(CodeUnknownCommand).With("command", name).Errorf("unsupported command")
}
