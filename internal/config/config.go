// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package config loads profiled settings from defaults, an optional YAML
// file and command-line flags, in increasing precedence.
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/muvr/profile/internal/logging"
	"github.com/muvr/profile/internal/service"
	"github.com/muvr/profile/internal/user"
)

// CodeInvalid marks configuration errors.
const CodeInvalid = "CONFIG_INVALID"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// DatabaseURLEnv is read when store.database_url is not configured.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the full process configuration.
type Config struct {
	Log             LogConfig     `koanf:"log" yaml:"log"`
	Server          ServerConfig  `koanf:"server" yaml:"server"`
	Metrics         MetricsConfig `koanf:"metrics" yaml:"metrics"`
	Store           StoreConfig   `koanf:"store" yaml:"store"`
	Entity          EntityConfig  `koanf:"entity" yaml:"entity"`
	Hasher          HasherConfig  `koanf:"hasher" yaml:"hasher"`
	Policy          PolicyConfig  `koanf:"policy" yaml:"policy"`
	Service         ServiceConfig `koanf:"service" yaml:"service"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" jsonschema:"type=string,description=Grace period for in-flight requests on shutdown (Go duration)"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `koanf:"format" yaml:"format" jsonschema:"enum=json,enum=text"`
}

// ServerConfig configures the API listener.
type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr" jsonschema:"description=API listen address (host:port)"`
}

// MetricsConfig configures the metrics and health listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" yaml:"addr" jsonschema:"description=Metrics and health probe listen address; empty disables"`
}

// StoreConfig selects the event log.
type StoreConfig struct {
	Driver           string        `koanf:"driver" yaml:"driver" jsonschema:"enum=memory,enum=postgres"`
	DatabaseURL      string        `koanf:"database_url" yaml:"database_url,omitempty" jsonschema:"description=PostgreSQL URL; falls back to $DATABASE_URL"`
	ConnectRetries   uint64        `koanf:"connect_retries" yaml:"connect_retries"`
	ConnectBaseDelay time.Duration `koanf:"connect_base_delay" yaml:"connect_base_delay" jsonschema:"type=string"`
}

// EntityConfig tunes the entity registry.
type EntityConfig struct {
	IdleTimeout time.Duration `koanf:"idle_timeout" yaml:"idle_timeout" jsonschema:"type=string,description=Passivate engines idle this long; 0 disables"`
	MailboxSize int           `koanf:"mailbox_size" yaml:"mailbox_size" jsonschema:"minimum=1"`
}

// HasherConfig selects the password hasher for new registrations.
type HasherConfig struct {
	Algorithm string `koanf:"algorithm" yaml:"algorithm" jsonschema:"enum=sha512,enum=argon2id"`
}

// PolicyConfig holds the behaviour switches of the user state machine.
type PolicyConfig struct {
	Reregistration string `koanf:"reregistration" yaml:"reregistration" jsonschema:"enum=reject,enum=reset"`
	ProfileDefault string `koanf:"profile_default" yaml:"profile_default" jsonschema:"enum=empty,enum=absent"`
}

// ServiceConfig tunes the service adapter.
type ServiceConfig struct {
	LoginFailureAsNotFound bool     `koanf:"login_failure_as_not_found" yaml:"login_failure_as_not_found"`
	ReservedUsernames      []string `koanf:"reserved_usernames" yaml:"reserved_usernames,omitempty" jsonschema:"description=Glob patterns of usernames that cannot be registered (case-insensitive)"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: logging.FormatJSON},
		Server:  ServerConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Store: StoreConfig{
			Driver:           DriverMemory,
			ConnectRetries:   8,
			ConnectBaseDelay: 250 * time.Millisecond,
		},
		Entity: EntityConfig{
			IdleTimeout: 10 * time.Minute,
			MailboxSize: 64,
		},
		Hasher: HasherConfig{Algorithm: user.DefaultAlgorithm},
		Policy: PolicyConfig{
			Reregistration: string(user.ReregistrationReject),
			ProfileDefault: string(user.ProfileDefaultEmpty),
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// UserPolicy converts the policy section.
func (c Config) UserPolicy() user.Policy {
	return user.Policy{
		Reregistration: user.Reregistration(c.Policy.Reregistration),
		ProfileDefault: user.ProfileDefault(c.Policy.ProfileDefault),
	}
}

// Load builds the configuration. path may be empty; flags may be nil. Only
// flags registered by BindFlags are consulted.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Defaults()
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, oops.Code(CodeInvalid).With("path", path).Wrap(err)
		}
		if err := ValidateDocument(data); err != nil {
			return Config{}, oops.Code(CodeInvalid).With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code(CodeInvalid).With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code(CodeInvalid).With("source", "flags").Wrap(err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code(CodeInvalid).Wrap(err)
	}

	if cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the schema cannot express.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatText:
	default:
		return oops.Code(CodeInvalid).With("log.format", c.Log.Format).Errorf("unknown log format")
	}
	if c.Server.Addr == "" {
		return oops.Code(CodeInvalid).Errorf("server.addr is required")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return oops.Code(CodeInvalid).
				With("store.driver", c.Store.Driver).
				Errorf("store.database_url or $%s is required for the postgres driver", DatabaseURLEnv)
		}
	default:
		return oops.Code(CodeInvalid).With("store.driver", c.Store.Driver).Errorf("unknown store driver")
	}
	if c.Entity.MailboxSize < 1 {
		return oops.Code(CodeInvalid).With("entity.mailbox_size", c.Entity.MailboxSize).Errorf("mailbox size must be positive")
	}
	if c.Entity.IdleTimeout < 0 {
		return oops.Code(CodeInvalid).With("entity.idle_timeout", c.Entity.IdleTimeout.String()).Errorf("idle timeout must not be negative")
	}
	if _, err := user.NewHasher(c.Hasher.Algorithm); err != nil {
		return err
	}
	if _, err := service.CompileReserved(c.Service.ReservedUsernames); err != nil {
		return oops.Code(CodeInvalid).With("service.reserved_usernames", c.Service.ReservedUsernames).Wrap(err)
	}
	return c.UserPolicy().Validate()
}

// Redacted returns a copy safe to print: the database password is masked.
func (c Config) Redacted() Config {
	if c.Store.DatabaseURL == "" {
		return c
	}
	u, err := url.Parse(c.Store.DatabaseURL)
	if err != nil {
		c.Store.DatabaseURL = "[REDACTED]"
		return c
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	c.Store.DatabaseURL = u.String()
	return c
}
