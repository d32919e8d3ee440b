// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// credentialsRequest is the body of register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// rotateRequest is the body of the password rotation endpoint.
type rotateRequest struct {
	NewPassword string `json:"new_password"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.svc.Register(r.Context(), req.Username, req.Password)
	s.record("register", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	session, err := s.svc.Authenticate(r.Context(), req.Username, req.Password)
	s.record("login", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTokenIssued("login")
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRotatePassword(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.record("rotate_password", errMissingToken)
		s.writeError(w, r, errMissingToken)
		return
	}

	var req rotateRequest
	if !s.decode(w, r, &req) {
		return
	}

	session, err := s.svc.RotatePassword(r.Context(), token, req.NewPassword)
	s.record("rotate_password", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTokenIssued("rotate_password")
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.record("delete_account", errMissingToken)
		s.writeError(w, r, errMissingToken)
		return
	}

	err := s.svc.DeleteAccount(r.Context(), token)
	s.record("delete_account", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var errMissingToken = oops.Code("AUTH_UNAUTHORIZED").Errorf("missing bearer token")

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// decode reads a JSON body into dst, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, oops.Code("AUTH_INVALID_INPUT").
			With("operation", "decode request body").
			Errorf("malformed request body"))
		return false
	}
	return true
}

// statusForCode maps service error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case "AUTH_INVALID_INPUT":
		return http.StatusBadRequest
	case "AUTH_INVALID_CREDENTIALS", "AUTH_UNAUTHORIZED":
		return http.StatusUnauthorized
	case "AUTH_ALREADY_EXISTS":
		return http.StatusConflict
	case "AUTH_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errutil.Code(err)
	status := statusForCode(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		errutil.LogError(s.logger, "internal error handling "+r.URL.Path, err)
		message = "internal error"
	}

	s.writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

// record counts the outcome of an auth operation.
func (s *Server) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = errutil.Code(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.RecordAuthRequest(operation, outcome)
}
