// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/muvr/profile/internal/config"
	"github.com/muvr/profile/internal/store"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL event log schema",
		Long: `Apply or revert the embedded schema migrations. The database comes from
store.database_url, --database-url or $DATABASE_URL.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, opts, func(m schemaMigrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printStatus(cmd, m)
			})
		},
	})

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert all migrations, dropping every stored event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return oops.Code(config.CodeInvalid).Errorf("refusing to drop the event log without --yes")
			}
			return withMigrator(cmd, opts, func(m schemaMigrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printStatus(cmd, m)
			})
		},
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirm that all events will be deleted")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, opts, func(m schemaMigrator) error {
				return printStatus(cmd, m)
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, opts *rootOptions, fn func(schemaMigrator) error) (err error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.DatabaseURL == "" {
		return oops.Code(config.CodeInvalid).Errorf("a database URL is required (--database-url or $%s)", config.DatabaseURLEnv)
	}

	m, err := opts.openMigrator(cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}

func printStatus(cmd *cobra.Command, m schemaMigrator) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	name := store.MigrationName(status.Version)
	if name == "" {
		name = "none"
	}
	cmd.Printf("version: %d (%s)\n", status.Version, name)
	if status.Dirty {
		cmd.Println("state: dirty, manual repair required")
	}
	if len(status.Pending) == 0 {
		cmd.Println("pending: none")
		return nil
	}
	cmd.Printf("pending: %v\n", status.Pending)
	return nil
}
