package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterVoterRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address,omitempty"`
}

type SetVerificationRequest struct {
	Kind  string `json:"kind"`
	Value bool   `json:"value"`
}

type VoterProfileResponse struct {
	VoterID        string `json:"voter_id"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	FullName       string `json:"full_name"`
	NationalID     string `json:"national_id,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Address        string `json:"address,omitempty"`
	EmailVerified  bool   `json:"email_verified"`
	PhoneVerified  bool   `json:"phone_verified"`
	IDVerified     bool   `json:"id_verified"`
	Level          string `json:"level"`
	VotingEligible bool   `json:"voting_eligible"`
	HasVoted       bool   `json:"has_voted"`
	RegisteredAt   string `json:"registered_at"`
}

type EligibilityResponse struct {
	VoterID  string `json:"voter_id"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Level    string `json:"level"`
}

type DuplicateNationalIDResponse struct {
	NationalID string `json:"national_id"`
	Duplicate  bool   `json:"duplicate"`
}

type SubmitIDDocumentRequest struct {
	NationalID  string `json:"national_id"`
	IDType      string `json:"id_type"`
	DocumentRef string `json:"document_ref,omitempty"`
}

type ReviewIDDocumentRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type IDDocumentSubmissionResponse struct {
	SubmissionID    string `json:"submission_id"`
	VoterID         string `json:"voter_id"`
	NationalID      string `json:"national_id"`
	IDType          string `json:"id_type"`
	DocumentRef     string `json:"document_ref,omitempty"`
	Status          string `json:"status"`
	ReviewerID      string `json:"reviewer_id,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	SubmittedAt     string `json:"submitted_at"`
	ReviewedAt      string `json:"reviewed_at,omitempty"`
}

type SubmissionListResponse struct {
	Items []IDDocumentSubmissionResponse `json:"items"`
}
