// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/user"
	"github.com/muvr/profile/pkg/errutil"
)

var tracer = otel.Tracer("muvr/profile/service")

// CodeUnexpectedReply marks a reply of the wrong type for its command.
const CodeUnexpectedReply = "SERVICE_UNEXPECTED_REPLY"

// Submitter routes a command to the entity for username.
// *entity.Registry implements it.
type Submitter interface {
	Submit(ctx context.Context, username string, cmd user.Command) (user.Reply, error)
}

// Config tunes the adapter.
type Config struct {
	// LoginFailureAsNotFound reports a wrong password as USER_NOT_FOUND so
	// callers cannot tell it apart from an unknown user.
	LoginFailureAsNotFound bool
	// Reserved names cannot be registered. Nil reserves nothing.
	Reserved *ReservedNames
	Logger   *slog.Logger
}

// Service is the boundary between transports and the entity registry.
type Service struct {
	entities Submitter
	cfg      Config
	logger   *slog.Logger
}

// New returns a Service submitting to entities.
func New(entities Submitter, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entities: entities, cfg: cfg, logger: logger}
}

// Register creates credentials for msg.Username and returns the username.
func (s *Service) Register(ctx context.Context, msg RegisterMessage) (string, error) {
	if err := ValidateUsername(msg.Username); err != nil {
		return "", err
	}
	if err := s.cfg.Reserved.Check(msg.Username); err != nil {
		return "", err
	}
	reply, err := s.submit(ctx, msg.Username, user.Register{Password: msg.Password})
	if err != nil {
		return "", err
	}
	if _, ok := reply.(user.Ack); !ok {
		return "", unexpectedReply(user.CommandRegister, reply)
	}
	s.logger.InfoContext(ctx, "user registered", "username", msg.Username)
	return msg.Username, nil
}

// Login checks msg.Password and returns a fresh session token.
func (s *Service) Login(ctx context.Context, msg LoginMessage) (string, error) {
	if err := ValidateUsername(msg.Username); err != nil {
		return "", err
	}
	reply, err := s.submit(ctx, msg.Username, user.Login{Password: msg.Password})
	if err != nil {
		if s.cfg.LoginFailureAsNotFound && errors.Is(err, user.ErrLoginFailed) {
			s.logger.InfoContext(ctx, "login failed", "username", msg.Username)
			return "", oops.Code(user.CodeNotFound).
				With("username", msg.Username).
				With("command", user.CommandLogin).
				Wrap(user.ErrNotRegistered)
		}
		return "", err
	}
	token, ok := reply.(user.Token)
	if !ok {
		return "", unexpectedReply(user.CommandLogin, reply)
	}
	return string(token), nil
}

// SetPublicProfile replaces the public profile of username.
func (s *Service) SetPublicProfile(ctx context.Context, username string, profile user.PublicProfile) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	reply, err := s.submit(ctx, username, user.SetPublicProfile{Profile: profile})
	if err != nil {
		return err
	}
	if _, ok := reply.(user.Ack); !ok {
		return unexpectedReply(user.CommandSetPublicProfile, reply)
	}
	return nil
}

// GetPublicProfile returns the public profile of username. The bool is false
// when no profile is present under the configured default.
func (s *Service) GetPublicProfile(ctx context.Context, username string) (user.PublicProfile, bool, error) {
	if err := ValidateUsername(username); err != nil {
		return user.PublicProfile{}, false, err
	}
	reply, err := s.submit(ctx, username, user.GetPublicProfile{})
	if err != nil {
		return user.PublicProfile{}, false, err
	}
	view, ok := reply.(user.ProfileView)
	if !ok {
		return user.PublicProfile{}, false, unexpectedReply(user.CommandGetPublicProfile, reply)
	}
	return view.Profile, view.Present, nil
}

func (s *Service) submit(ctx context.Context, username string, cmd user.Command) (user.Reply, error) {
	ctx, span := tracer.Start(ctx, "user."+cmd.Name(),
		trace.WithAttributes(
			attribute.String("user.username", username),
			attribute.String("user.command", cmd.Name()),
		),
	)
	defer span.End()

	reply, err := s.entities.Submit(ctx, username, cmd)
	if err == nil {
		return reply, nil
	}
	kind := entity.KindOf(err)
	span.SetAttributes(attribute.String("user.outcome", kind.String()))
	switch kind {
	case entity.KindPersistence, entity.KindInternal:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		errutil.LogError(ctx, s.logger, "command failed", err, "username", username, "command", cmd.Name())
	default:
		s.logger.DebugContext(ctx, "command rejected",
			"username", username,
			"command", cmd.Name(),
			"code", errutil.Code(err),
		)
	}
	return nil, err
}

func unexpectedReply(command string, reply user.Reply) error {
	return oops.Code(CodeUnexpectedReply).
		With("command", command).
		Errorf("unexpected reply %T", reply)
}
