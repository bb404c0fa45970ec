package httpserver

import (
	"errors"
	"net/http"
	"strings"

	ledgererrors "electra/contexts/election-core/vote-ledger/domain/errors"
	ledgerhttp "electra/contexts/election-core/vote-ledger/transport/http"
)

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrCandidateNotFound),
		errors.Is(err, ledgererrors.ErrBallotNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidRequest):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrAlreadyVoted):
		writeLedgerError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, ledgererrors.ErrCandidateExists),
		errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledgererrors.ErrNotEligible):
		writeLedgerError(w, http.StatusUnprocessableEntity, "not_eligible", err.Error())
	case errors.Is(err, ledgererrors.ErrDependencyTimeout):
		writeLedgerError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) requireLedgerVoter(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID := s.resolveVoterID(r)
	if voterID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "unauthorized", "a valid bearer token or X-User-Id header is required")
		return "", false
	}
	return voterID, true
}

func requireLedgerAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "admin_required", "X-Admin-Id header is required")
		return "", false
	}
	return adminID, true
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireLedgerVoter(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CastVoteRequest
	if !s.decodeJSON(w, r, &req, writeLedgerError) {
		return
	}
	resp, err := s.ledger.Handler.CastVoteHandler(
		r.Context(),
		voterID,
		resolveClientIP(r),
		r.UserAgent(),
		req,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBallot(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireLedgerVoter(w, r)
	if !ok {
		return
	}
	pathVoterID := strings.TrimSpace(r.PathValue("voter_id"))
	if pathVoterID != voterID {
		writeLedgerError(w, http.StatusForbidden, "forbidden", "voters may only read their own ballot")
		return
	}
	resp, err := s.ledger.Handler.GetBallotHandler(r.Context(), pathVoterID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireLedgerAdmin(w, r); !ok {
		return
	}
	var req ledgerhttp.AddCandidateRequest
	if !s.decodeJSON(w, r, &req, writeLedgerError) {
		return
	}
	resp, err := s.ledger.Handler.AddCandidateHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := strings.TrimSpace(r.PathValue("candidate_id"))
	resp, err := s.ledger.Handler.GetCandidateHandler(r.Context(), candidateID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListCandidatesHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ResultsHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecountCandidate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireLedgerAdmin(w, r); !ok {
		return
	}
	candidateID := strings.TrimSpace(r.PathValue("candidate_id"))
	resp, err := s.ledger.Handler.RecountCandidateHandler(r.Context(), candidateID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
