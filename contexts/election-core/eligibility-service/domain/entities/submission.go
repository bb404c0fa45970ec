package entities

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

type IDDocumentType string

const (
	IDDocumentPassport       IDDocumentType = "passport"
	IDDocumentNationalID     IDDocumentType = "national_id"
	IDDocumentDrivingLicense IDDocumentType = "driving_license"
)

func IsValidIDDocumentType(idType IDDocumentType) bool {
	switch idType {
	case IDDocumentPassport, IDDocumentNationalID, IDDocumentDrivingLicense:
		return true
	default:
		return false
	}
}

// IDDocumentSubmission is one review request for an identity document.
// Approval is what eventually flips the voter's id flag; the submission
// itself never carries verification state.
type IDDocumentSubmission struct {
	SubmissionID    string
	VoterID         string
	NationalID      string
	IDType          IDDocumentType
	DocumentRef     string
	Status          SubmissionStatus
	ReviewerID      string
	RejectionReason string
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
}

func (s IDDocumentSubmission) Resolved() bool {
	return s.Status != SubmissionStatusPending
}
