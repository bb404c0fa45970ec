package errors

import "errors"

var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrVoterNotFound             = errors.New("voter not found")
	ErrVoterAlreadyRegistered    = errors.New("voter is already registered")
	ErrInvalidVerificationKind   = errors.New("invalid verification kind")
	ErrDuplicateNationalID       = errors.New("national id already registered to another voter")
	ErrSubmissionNotFound        = errors.New("id document submission not found")
	ErrPendingSubmissionExists   = errors.New("a pending id document submission already exists")
	ErrSubmissionAlreadyResolved = errors.New("id document submission is already resolved")
	ErrInvalidReviewDecision     = errors.New("invalid review decision")
	ErrInvalidIDDocumentType     = errors.New("invalid id document type")
	ErrConflict                  = errors.New("eligibility state conflict")
	ErrDependencyTimeout         = errors.New("dependency timed out")
)
