package httpserver

import (
	"errors"
	"net/http"
	"strings"

	prooferrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	proofhttp "electra/contexts/identity-access/possession-proof-service/transport/http"
)

func writeProofError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, proofhttp.ErrorResponse{Code: code, Message: message})
}

func writeProofDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prooferrors.ErrChallengeNotFound):
		writeProofError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, prooferrors.ErrInvalidRequest),
		errors.Is(err, prooferrors.ErrInvalidChannel):
		writeProofError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, prooferrors.ErrCodeMismatch):
		writeProofError(w, http.StatusUnprocessableEntity, "code_mismatch", err.Error())
	case errors.Is(err, prooferrors.ErrChallengeExpired):
		writeProofError(w, http.StatusGone, "challenge_expired", err.Error())
	case errors.Is(err, prooferrors.ErrChallengeResolved),
		errors.Is(err, prooferrors.ErrConflict):
		writeProofError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, prooferrors.ErrDependencyTimeout):
		writeProofError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeProofError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) requireProofVoter(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID := s.resolveVoterID(r)
	if voterID == "" {
		writeProofError(w, http.StatusUnauthorized, "unauthorized", "a valid bearer token or X-User-Id header is required")
		return "", false
	}
	return voterID, true
}

func (s *Server) handleIssueChallenge(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireProofVoter(w, r)
	if !ok {
		return
	}
	var req proofhttp.IssueChallengeRequest
	if !s.decodeJSON(w, r, &req, writeProofError) {
		return
	}
	resp, err := s.proofs.Handler.IssueChallengeHandler(r.Context(), voterID, req)
	if err != nil {
		writeProofDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleConfirmChallenge(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireProofVoter(w, r); !ok {
		return
	}
	challengeID := strings.TrimSpace(r.PathValue("challenge_id"))
	var req proofhttp.ConfirmChallengeRequest
	if !s.decodeJSON(w, r, &req, writeProofError) {
		return
	}
	resp, err := s.proofs.Handler.ConfirmChallengeHandler(r.Context(), challengeID, req)
	if err != nil {
		writeProofDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
