// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package user_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muvr/profile/internal/user"
	"github.com/muvr/profile/pkg/errutil"
)

func newDecider(t *testing.T, policy user.Policy) *user.Decider {
	t.Helper()
	d, err := user.NewDecider(user.DeciderConfig{Policy: policy})
	require.NoError(t, err)
	return d
}

// registered runs Register through d and folds the resulting event.
func registered(t *testing.T, d *user.Decider, password string) (user.State, user.Registered) {
	t.Helper()
	decision, err := d.Decide(user.State{}, user.Register{Password: password})
	require.NoError(t, err)
	evt, ok := decision.Event.(user.Registered)
	require.True(t, ok, "expected Registered event, got %T", decision.Event)
	return user.Apply(user.State{}, evt), evt
}

func TestNewDecider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  user.DeciderConfig
		code string
	}{
		{
			name: "unknown algorithm",
			cfg:  user.DeciderConfig{Algorithm: "rot13"},
			code: user.CodeUnknownHasher,
		},
		{
			name: "unknown reregistration policy",
			cfg:  user.DeciderConfig{Policy: user.Policy{Reregistration: "merge"}},
			code: "CONFIG_INVALID",
		},
		{
			name: "unknown profile default",
			cfg:  user.DeciderConfig{Policy: user.Policy{ProfileDefault: "null"}},
			code: "CONFIG_INVALID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := user.NewDecider(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, d)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestDecide_Unregistered(t *testing.T) {
	d := newDecider(t, user.DefaultPolicy())

	t.Run("register produces registered event", func(t *testing.T) {
		decision, err := d.Decide(user.State{}, user.Register{Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, user.Ack{}, decision.Reply)

		evt, ok := decision.Event.(user.Registered)
		require.True(t, ok)
		assert.Equal(t, user.AlgorithmSHA512, evt.Algorithm)
		assert.NotEmpty(t, evt.PasswordSalt)
		assert.NotEmpty(t, evt.PasswordHash)
	})

	t.Run("register with empty password is rejected", func(t *testing.T) {
		decision, err := d.Decide(user.State{}, user.Register{})
		require.Error(t, err)
		assert.Nil(t, decision.Event)
		assert.True(t, errors.Is(err, user.ErrInvalidPassword))
		errutil.AssertErrorCode(t, err, user.CodeInvalidPassword)
	})

	for _, cmd := range []user.Command{
		user.Login{Password: "secret1"},
		user.SetPublicProfile{Profile: user.PublicProfile{FirstName: "A"}},
		user.GetPublicProfile{},
	} {
		t.Run(cmd.Name()+" before register is not found", func(t *testing.T) {
			decision, err := d.Decide(user.State{}, cmd)
			require.Error(t, err)
			assert.Nil(t, decision.Event)
			assert.Nil(t, decision.Reply)
			assert.True(t, errors.Is(err, user.ErrNotRegistered))
			errutil.AssertErrorCode(t, err, user.CodeNotFound)
			errutil.AssertErrorContext(t, err, "command", cmd.Name())
		})
	}

	t.Run("nil command is unsupported", func(t *testing.T) {
		_, err := d.Decide(user.State{}, nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, user.CodeUnknownCommand)
	})
}

func TestDecide_RegisterUsesFreshSalt(t *testing.T) {
	d := newDecider(t, user.DefaultPolicy())

	_, first := registered(t, d, "secret1")
	_, second := registered(t, d, "secret1")

	assert.NotEqual(t, first.PasswordSalt, second.PasswordSalt)
	assert.NotEqual(t, first.PasswordHash, second.PasswordHash)
}

func TestDecide_Login(t *testing.T) {
	d := newDecider(t, user.DefaultPolicy())
	state, _ := registered(t, d, "secret1")

	t.Run("matching password returns token and no event", func(t *testing.T) {
		decision, err := d.Decide(state, user.Login{Password: "secret1"})
		require.NoError(t, err)
		assert.Nil(t, decision.Event)

		token, ok := decision.Reply.(user.Token)
		require.True(t, ok)
		assert.NotEmpty(t, string(token))
	})

	t.Run("tokens are fresh per login", func(t *testing.T) {
		a, err := d.Decide(state, user.Login{Password: "secret1"})
		require.NoError(t, err)
		b, err := d.Decide(state, user.Login{Password: "secret1"})
		require.NoError(t, err)
		assert.NotEqual(t, a.Reply, b.Reply)
	})

	for _, wrong := range []string{"wrong", "", "secret1 ", "Secret1"} {
		t.Run("mismatch "+wrong, func(t *testing.T) {
			decision, err := d.Decide(state, user.Login{Password: wrong})
			require.Error(t, err)
			assert.Nil(t, decision.Event)
			assert.True(t, errors.Is(err, user.ErrLoginFailed))
			errutil.AssertErrorCode(t, err, user.CodeLoginFailed)
		})
	}
}

func TestDecide_LoginUsesRecordedAlgorithm(t *testing.T) {
	argon, err := user.NewDecider(user.DeciderConfig{Algorithm: user.AlgorithmArgon2id})
	require.NoError(t, err)
	state, evt := registered(t, argon, "secret1")
	assert.Equal(t, user.AlgorithmArgon2id, evt.Algorithm)

	// A decider configured for sha512 still verifies argon2id credentials.
	sha := newDecider(t, user.DefaultPolicy())
	decision, err := sha.Decide(state, user.Login{Password: "secret1"})
	require.NoError(t, err)
	assert.IsType(t, user.Token(""), decision.Reply)
}

func TestDecide_LoginTokenSource(t *testing.T) {
	d, err := user.NewDecider(user.DeciderConfig{
		Salts:  func() (string, error) { return "fixed-salt", nil },
		Tokens: func() (string, error) { return "token-1", nil },
	})
	require.NoError(t, err)

	state, evt := registered(t, d, "secret1")
	assert.Equal(t, "fixed-salt", evt.PasswordSalt)

	decision, err := d.Decide(state, user.Login{Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.Token("token-1"), decision.Reply)
}

func TestDecide_RandomFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	d, err := user.NewDecider(user.DeciderConfig{
		Salts: func() (string, error) { return "", boom },
	})
	require.NoError(t, err)

	decision, err := d.Decide(user.State{}, user.Register{Password: "secret1"})
	require.Error(t, err)
	assert.Nil(t, decision.Event)
	assert.True(t, errors.Is(err, boom))
}

func TestDecide_Reregistration(t *testing.T) {
	t.Run("reject policy", func(t *testing.T) {
		d := newDecider(t, user.DefaultPolicy())
		state, _ := registered(t, d, "secret1")

		decision, err := d.Decide(state, user.Register{Password: "other"})
		require.Error(t, err)
		assert.Nil(t, decision.Event)
		assert.True(t, errors.Is(err, user.ErrAlreadyRegistered))
		errutil.AssertErrorCode(t, err, user.CodeAlreadyRegistered)
	})

	t.Run("reset policy replaces credentials and profile", func(t *testing.T) {
		d := newDecider(t, user.Policy{
			Reregistration: user.ReregistrationReset,
			ProfileDefault: user.ProfileDefaultEmpty,
		})
		state, _ := registered(t, d, "secret1")
		state = user.Apply(state, user.PublicProfileSet{Profile: user.PublicProfile{FirstName: "A"}})

		decision, err := d.Decide(state, user.Register{Password: "other"})
		require.NoError(t, err)
		state = user.Apply(state, decision.Event)

		_, err = d.Decide(state, user.Login{Password: "secret1"})
		assert.True(t, errors.Is(err, user.ErrLoginFailed))
		_, err = d.Decide(state, user.Login{Password: "other"})
		require.NoError(t, err)

		profile, set := state.Profile()
		assert.Equal(t, user.EmptyProfile, profile)
		assert.False(t, set)
	})
}

func TestDecide_PublicProfile(t *testing.T) {
	d := newDecider(t, user.DefaultPolicy())
	state, _ := registered(t, d, "secret1")

	t.Run("default is present and empty", func(t *testing.T) {
		decision, err := d.Decide(state, user.GetPublicProfile{})
		require.NoError(t, err)
		assert.Nil(t, decision.Event)
		assert.Equal(t, user.ProfileView{Profile: user.EmptyProfile, Present: true}, decision.Reply)
	})

	t.Run("set produces event without validation", func(t *testing.T) {
		profile := user.PublicProfile{FirstName: "", LastName: "   ", Age: -3}
		decision, err := d.Decide(state, user.SetPublicProfile{Profile: profile})
		require.NoError(t, err)
		assert.Equal(t, user.PublicProfileSet{Profile: profile}, decision.Event)
		assert.Equal(t, user.Ack{}, decision.Reply)
	})

	t.Run("get reflects applied set", func(t *testing.T) {
		profile := user.PublicProfile{FirstName: "A", LastName: "B"}
		next := user.Apply(state, user.PublicProfileSet{Profile: profile})
		decision, err := d.Decide(next, user.GetPublicProfile{})
		require.NoError(t, err)
		assert.Equal(t, user.ProfileView{Profile: profile, Present: true}, decision.Reply)
	})
}

func TestDecide_ProfileDefaultAbsent(t *testing.T) {
	d := newDecider(t, user.Policy{
		Reregistration: user.ReregistrationReject,
		ProfileDefault: user.ProfileDefaultAbsent,
	})
	state, _ := registered(t, d, "secret1")

	decision, err := d.Decide(state, user.GetPublicProfile{})
	require.NoError(t, err)
	assert.Equal(t, user.ProfileView{Present: false}, decision.Reply)

	state = user.Apply(state, user.PublicProfileSet{Profile: user.EmptyProfile})
	decision, err = d.Decide(state, user.GetPublicProfile{})
	require.NoError(t, err)
	assert.Equal(t, user.ProfileView{Profile: user.EmptyProfile, Present: true}, decision.Reply)
}
