// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/store"
	"github.com/muvr/profile/internal/user"
	"github.com/muvr/profile/pkg/errutil"
)

func TestMemoryEventLog_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemoryEventLog()
	stream := entity.StreamName("alice")

	registered := user.Registered{Algorithm: user.AlgorithmSHA512, PasswordHash: []byte{0xde, 0xad}, PasswordSalt: "abcd"}
	profile := user.PublicProfileSet{Profile: user.PublicProfile{FirstName: "Alice", Age: 30}}

	require.NoError(t, log.Append(ctx, stream, 1, registered))
	require.NoError(t, log.Append(ctx, stream, 2, profile))

	events, err := log.Read(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []user.Event{registered, profile}, events)

	records := log.Records(stream)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, user.EventTypePublicProfileSet, records[1].Type)
	assert.Equal(t, -1, records[0].ID.Compare(records[1].ID), "ids sort in append order")
}

func TestMemoryEventLog_EmptyStream(t *testing.T) {
	events, err := store.NewMemoryEventLog().Read(context.Background(), entity.StreamName("nobody"))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, events)
}

func TestMemoryEventLog_SequenceConflict(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemoryEventLog()
	stream := entity.StreamName("bob")
	evt := user.PublicProfileSet{}

	tests := []struct {
		name string
		seq  uint64
	}{
		{"zero", 0},
		{"gap", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := log.Append(ctx, stream, tt.seq, evt)
			require.ErrorIs(t, err, entity.ErrSequenceConflict)
			errutil.AssertErrorCode(t, err, store.CodeSequenceConflict)
		})
	}

	require.NoError(t, log.Append(ctx, stream, 1, evt))
	err := log.Append(ctx, stream, 1, evt)
	require.ErrorIs(t, err, entity.ErrSequenceConflict)
	assert.Len(t, log.Records(stream), 1)
}

func TestMemoryEventLog_StreamsAreIndependent(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemoryEventLog()

	require.NoError(t, log.Append(ctx, entity.StreamName("a"), 1, user.PublicProfileSet{}))
	require.NoError(t, log.Append(ctx, entity.StreamName("b"), 1, user.PublicProfileSet{}))

	events, err := log.Read(ctx, entity.StreamName("a"))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMemoryEventLog_HonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log := store.NewMemoryEventLog()

	require.ErrorIs(t, log.Append(ctx, "user:x", 1, user.PublicProfileSet{}), context.Canceled)
	_, err := log.Read(ctx, "user:x")
	require.ErrorIs(t, err, context.Canceled)
}
