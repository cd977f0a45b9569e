// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package xdg resolves profiled's XDG Base Directory locations.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "profiled"

// ConfigFileName is the file looked up in ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns $XDG_CONFIG_HOME/profiled, falling back to
// ~/.config/profiled.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the path of the default config file and whether it
// exists. A missing file is not an error.
func ConfigFile() (string, bool, error) {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	case err != nil:
		return path, false, oops.With("path", path).Wrap(err)
	case info.IsDir():
		return path, false, oops.With("path", path).Errorf("config path is a directory")
	}
	return path, true, nil
}
