package httpserver

import (
	"errors"
	"net/http"

	credentialerrors "electra/contexts/identity-access/credential-service/domain/errors"
	credentialhttp "electra/contexts/identity-access/credential-service/transport/http"
)

func writeCredentialError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, credentialhttp.ErrorResponse{Code: code, Message: message})
}

func writeCredentialDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credentialerrors.ErrCredentialNotFound):
		writeCredentialError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, credentialerrors.ErrInvalidRequest),
		errors.Is(err, credentialerrors.ErrWeakPassword):
		writeCredentialError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, credentialerrors.ErrEmailTaken),
		errors.Is(err, credentialerrors.ErrConflict):
		writeCredentialError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, credentialerrors.ErrInvalidCredentials):
		writeCredentialError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		writeCredentialError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialhttp.RegisterRequest
	if !s.decodeJSON(w, r, &req, writeCredentialError) {
		return
	}
	resp, err := s.credentials.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeCredentialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialhttp.LoginRequest
	if !s.decodeJSON(w, r, &req, writeCredentialError) {
		return
	}
	resp, err := s.credentials.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeCredentialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
