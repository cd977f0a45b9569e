// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package config

import "github.com/spf13/pflag"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"addr":              "server.addr",
	"metrics-addr":      "metrics.addr",
	"store":             "store.driver",
	"database-url":      "store.database_url",
	"idle-timeout":      "entity.idle_timeout",
	"mailbox-size":      "entity.mailbox_size",
	"hasher":            "hasher.algorithm",
	"reregistration":    "policy.reregistration",
	"profile-default":   "policy.profile_default",
	"login-as-notfound": "service.login_failure_as_not_found",
	"reserved":          "service.reserved_usernames",
}

// BindFlags registers the configuration flags on fs. Flag defaults equal
// Defaults(), so an unset flag never overrides the file.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", d.Log.Format, "log format (json, text)")
	fs.String("addr", d.Server.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health listen address (empty disables)")
	fs.String("store", d.Store.Driver, "event log driver (memory, postgres)")
	fs.String("database-url", "", "PostgreSQL URL (default $DATABASE_URL)")
	fs.Duration("idle-timeout", d.Entity.IdleTimeout, "passivate entities idle this long (0 disables)")
	fs.Int("mailbox-size", d.Entity.MailboxSize, "queued commands per entity before callers block")
	fs.String("hasher", d.Hasher.Algorithm, "password hasher for new registrations (sha512, argon2id)")
	fs.String("reregistration", d.Policy.Reregistration, "register on a registered user (reject, reset)")
	fs.String("profile-default", d.Policy.ProfileDefault, "profile before the first set (empty, absent)")
	fs.Bool("login-as-notfound", d.Service.LoginFailureAsNotFound, "report wrong passwords as unknown users")
	fs.StringSlice("reserved", d.Service.ReservedUsernames, "glob patterns of usernames that cannot be registered")
}
