// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/muvr/profile/internal/config"
	"github.com/muvr/profile/internal/store"
	"github.com/muvr/profile/internal/xdg"
)

// rootOptions carries the persistent flags and the seams tests replace.
type rootOptions struct {
	configFile   string
	openMigrator func(databaseURL string) (schemaMigrator, error)
}

// schemaMigrator is the part of *store.Migrator the migrate commands use.
type schemaMigrator interface {
	Up() error
	Down() error
	Status() (store.MigrationStatus, error)
	Close() error
}

// NewRootCmd creates the profiled command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{
		openMigrator: func(databaseURL string) (schemaMigrator, error) {
			return store.NewMigrator(databaseURL)
		},
	})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiled",
		Short: "Event-sourced user registration and profile service",
		Long: `profiled keeps one single-writer entity per username. Each entity's
state is rebuilt from its event stream and every change is an appended event.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/profiled/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(opts, nil))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// loadConfig resolves the configuration for cmd from --config and flags.
// Without --config the XDG config file is read if present.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := o.configFile
	if path == "" {
		found, ok, err := xdg.ConfigFile()
		if err != nil {
			return config.Config{}, oops.Code(config.CodeInvalid).Wrap(err)
		}
		if ok {
			path = found
		}
	}
	return config.Load(path, cmd.Flags())
}
