// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"

	"github.com/muvr/profile/internal/service"
	"github.com/muvr/profile/internal/user"
)

const maxBodyBytes = 64 << 10

// Codes produced by the transport itself.
const (
	CodeBadRequest     = "HTTP_BAD_REQUEST"
	CodeProfileMissing = "USER_PROFILE_NOT_SET"
)

type registerResponse struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var msg service.RegisterMessage
	if err := decodeBody(w, r, &msg); err != nil {
		s.writeError(w, r, err)
		return
	}
	username, err := s.svc.Register(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Username: username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var msg service.LoginMessage
	if err := decodeBody(w, r, &msg); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.svc.Login(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var profile user.PublicProfile
	if err := decodeBody(w, r, &profile); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.SetPublicProfile(r.Context(), r.PathValue("id"), profile); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("id")
	profile, present, err := s.svc.GetPublicProfile(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !present {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "public profile not set",
			Code:  CodeProfileMissing,
		})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return oops.Code(CodeBadRequest).Wrapf(err, "invalid json body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
