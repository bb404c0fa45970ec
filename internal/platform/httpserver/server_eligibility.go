package httpserver

import (
	"errors"
	"net/http"
	"strings"

	eligibilityerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	eligibilityhttp "electra/contexts/election-core/eligibility-service/transport/http"
)

func writeEligibilityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, eligibilityhttp.ErrorResponse{Code: code, Message: message})
}

func writeEligibilityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eligibilityerrors.ErrVoterNotFound),
		errors.Is(err, eligibilityerrors.ErrSubmissionNotFound):
		writeEligibilityError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, eligibilityerrors.ErrInvalidRequest),
		errors.Is(err, eligibilityerrors.ErrInvalidVerificationKind),
		errors.Is(err, eligibilityerrors.ErrInvalidReviewDecision),
		errors.Is(err, eligibilityerrors.ErrInvalidIDDocumentType):
		writeEligibilityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, eligibilityerrors.ErrVoterAlreadyRegistered),
		errors.Is(err, eligibilityerrors.ErrDuplicateNationalID),
		errors.Is(err, eligibilityerrors.ErrPendingSubmissionExists),
		errors.Is(err, eligibilityerrors.ErrSubmissionAlreadyResolved),
		errors.Is(err, eligibilityerrors.ErrConflict):
		writeEligibilityError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, eligibilityerrors.ErrDependencyTimeout):
		writeEligibilityError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeEligibilityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) requireEligibilityVoter(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID := s.resolveVoterID(r)
	if voterID == "" {
		writeEligibilityError(w, http.StatusUnauthorized, "unauthorized", "a valid bearer token or X-User-Id header is required")
		return "", false
	}
	return voterID, true
}

func requireEligibilityAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeEligibilityError(w, http.StatusUnauthorized, "admin_required", "X-Admin-Id header is required")
		return "", false
	}
	return adminID, true
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req eligibilityhttp.RegisterVoterRequest
	if !s.decodeJSON(w, r, &req, writeEligibilityError) {
		return
	}
	resp, err := s.eligibility.Handler.RegisterVoterHandler(r.Context(), req)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireEligibilityVoter(w, r); !ok {
		return
	}
	voterID := strings.TrimSpace(r.PathValue("voter_id"))
	resp, err := s.eligibility.Handler.GetProfileHandler(r.Context(), voterID)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireEligibilityVoter(w, r); !ok {
		return
	}
	voterID := strings.TrimSpace(r.PathValue("voter_id"))
	resp, err := s.eligibility.Handler.CheckEligibilityHandler(r.Context(), voterID)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetVerification(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEligibilityAdmin(w, r); !ok {
		return
	}
	voterID := strings.TrimSpace(r.PathValue("voter_id"))
	var req eligibilityhttp.SetVerificationRequest
	if !s.decodeJSON(w, r, &req, writeEligibilityError) {
		return
	}
	resp, err := s.eligibility.Handler.SetVerificationHandler(r.Context(), voterID, req)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDuplicateNationalID(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEligibilityAdmin(w, r); !ok {
		return
	}
	nationalID := strings.TrimSpace(r.PathValue("national_id"))
	resp, err := s.eligibility.Handler.DuplicateNationalIDHandler(r.Context(), nationalID)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitIDDocument(w http.ResponseWriter, r *http.Request) {
	voterID, ok := s.requireEligibilityVoter(w, r)
	if !ok {
		return
	}
	pathVoterID := strings.TrimSpace(r.PathValue("voter_id"))
	if pathVoterID != voterID {
		writeEligibilityError(w, http.StatusForbidden, "forbidden", "voters may only submit documents for themselves")
		return
	}
	var req eligibilityhttp.SubmitIDDocumentRequest
	if !s.decodeJSON(w, r, &req, writeEligibilityError) {
		return
	}
	resp, err := s.eligibility.Handler.SubmitIDDocumentHandler(r.Context(), voterID, req)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleReviewIDDocument(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireEligibilityAdmin(w, r)
	if !ok {
		return
	}
	submissionID := strings.TrimSpace(r.PathValue("submission_id"))
	var req eligibilityhttp.ReviewIDDocumentRequest
	if !s.decodeJSON(w, r, &req, writeEligibilityError) {
		return
	}
	resp, err := s.eligibility.Handler.ReviewIDDocumentHandler(r.Context(), submissionID, reviewerID, req)
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireEligibilityAdmin(w, r); !ok {
		return
	}
	resp, err := s.eligibility.Handler.ListSubmissionsHandler(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeEligibilityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
