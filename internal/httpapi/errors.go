// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package httpapi

import (
	"errors"
	"net/http"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/user"
	"github.com/muvr/profile/pkg/errutil"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusOf maps a service error to an HTTP status.
func statusOf(err error) int {
	if errutil.Code(err) == CodeBadRequest {
		return http.StatusBadRequest
	}
	switch entity.KindOf(err) {
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindRejected:
		if errors.Is(err, user.ErrAlreadyRegistered) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case entity.KindLoginFailed:
		return http.StatusUnauthorized
	case entity.KindPersistence, entity.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal detail on server errors.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusServiceUnavailable:
		return "temporarily unavailable"
	}
	for _, sentinel := range []error{
		user.ErrNotRegistered,
		user.ErrAlreadyRegistered,
		user.ErrInvalidPassword,
		user.ErrLoginFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(r.Context(), s.logger, "request failed", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	writeJSON(w, status, errorResponse{Error: publicMessage(status, err), Code: errutil.Code(err)})
}
