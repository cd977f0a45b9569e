// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muvr/profile/internal/store"
)

func TestMigrator_FullCycle(t *testing.T) {
	ctx := context.Background()
	dsn, stop, err := startPostgres(ctx)
	require.NoError(t, err)
	defer stop()

	migrator, err := store.NewMigrator(dsn)
	require.NoError(t, err)
	defer migrator.Close()

	status, err := migrator.Status()
	require.NoError(t, err)
	assert.Zero(t, status.Version)
	require.NotEmpty(t, status.Pending)
	latest := status.Pending[len(status.Pending)-1]

	require.NoError(t, migrator.Up())
	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	require.NoError(t, migrator.Steps(-1))
	version, _, err = migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, latest-1, version)

	require.NoError(t, migrator.Down())
	version, _, err = migrator.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
}
