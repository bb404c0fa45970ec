package errors

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCandidateExists   = errors.New("candidate already exists")
	ErrBallotNotFound    = errors.New("ballot not found")
	ErrAlreadyVoted      = errors.New("voter has already cast a ballot")
	// ErrNotEligible is wrapped with the eligibility reason at the
	// use-case boundary; match it with errors.Is.
	ErrNotEligible = errors.New("voter is not eligible to vote")
	ErrConflict    = errors.New("vote ledger state conflict")
	// ErrDependencyTimeout marks a storage deadline overrun; the
	// operation is safe to retry.
	ErrDependencyTimeout = errors.New("dependency timed out")
)
