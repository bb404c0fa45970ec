package commands

import (
	"context"
	"strings"
	"time"

	application "electra/contexts/election-core/eligibility-service/application"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
)

// SubmitIDDocumentCommand opens a review request for an identity document.
type SubmitIDDocumentCommand struct {
	VoterID     string
	NationalID  string
	IDType      entities.IDDocumentType
	DocumentRef string
}

// ReviewIDDocumentCommand records an external reviewer decision.
type ReviewIDDocumentCommand struct {
	SubmissionID    string
	Decision        string // approve, reject
	ReviewerID      string
	RejectionReason string
}

// SubmitIDDocument creates a pending submission. It never sets the id
// flag itself: that only happens when a reviewer approves the document.
func (uc ProfileUseCase) SubmitIDDocument(ctx context.Context, cmd SubmitIDDocumentCommand) (entities.IDDocumentSubmission, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	nationalID := strings.TrimSpace(cmd.NationalID)
	documentRef := strings.TrimSpace(cmd.DocumentRef)
	if voterID == "" || nationalID == "" || documentRef == "" {
		return entities.IDDocumentSubmission{}, domainerrors.ErrInvalidRequest
	}
	if !entities.IsValidIDDocumentType(cmd.IDType) {
		return entities.IDDocumentSubmission{}, domainerrors.ErrInvalidIDDocumentType
	}

	profile, err := uc.Voters.GetVoter(ctx, voterID)
	if err != nil {
		return entities.IDDocumentSubmission{}, err
	}

	// The national id may already belong to this voter; only another
	// voter holding it blocks the submission.
	if owner, taken, err := uc.Voters.FindVoterByNationalID(ctx, nationalID); err != nil {
		return entities.IDDocumentSubmission{}, err
	} else if taken && owner.VoterID != profile.VoterID {
		return entities.IDDocumentSubmission{}, domainerrors.ErrDuplicateNationalID
	}

	if _, pending, err := uc.Submissions.GetPendingSubmissionByVoter(ctx, voterID); err != nil {
		return entities.IDDocumentSubmission{}, err
	} else if pending {
		return entities.IDDocumentSubmission{}, domainerrors.ErrPendingSubmissionExists
	}

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.IDDocumentSubmission{}, err
	}
	now := uc.now()
	submission := entities.IDDocumentSubmission{
		SubmissionID: submissionID,
		VoterID:      voterID,
		NationalID:   nationalID,
		IDType:       cmd.IDType,
		DocumentRef:  documentRef,
		Status:       entities.SubmissionStatusPending,
		SubmittedAt:  now,
	}
	if err := uc.Submissions.SaveSubmission(ctx, submission); err != nil {
		return entities.IDDocumentSubmission{}, err
	}
	if err := uc.appendSubmissionEvent(ctx, "voter.id_document_submitted", submission, now, nil); err != nil {
		return entities.IDDocumentSubmission{}, err
	}
	logger.Info("id document submitted",
		"event", "eligibility_id_document_submitted",
		"module", "election-core/eligibility-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"voter_id", voterID,
		"id_type", string(cmd.IDType),
	)
	return submission, nil
}

// ReviewIDDocument resolves a pending submission. Approval feeds the
// verification pipeline by applying SetVerification(voter, id, true).
func (uc ProfileUseCase) ReviewIDDocument(ctx context.Context, cmd ReviewIDDocumentCommand) (entities.IDDocumentSubmission, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	reviewerID := strings.TrimSpace(cmd.ReviewerID)
	decision := strings.ToLower(strings.TrimSpace(cmd.Decision))
	if submissionID == "" || reviewerID == "" {
		return entities.IDDocumentSubmission{}, domainerrors.ErrInvalidRequest
	}
	if decision != "approve" && decision != "reject" {
		return entities.IDDocumentSubmission{}, domainerrors.ErrInvalidReviewDecision
	}

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.IDDocumentSubmission{}, err
	}
	if submission.Resolved() {
		return entities.IDDocumentSubmission{}, domainerrors.ErrSubmissionAlreadyResolved
	}

	now := uc.now()
	reviewedAt := now
	submission.ReviewerID = reviewerID
	submission.ReviewedAt = &reviewedAt
	eventType := "voter.id_document_approved"
	if decision == "approve" {
		submission.Status = entities.SubmissionStatusApproved
	} else {
		submission.Status = entities.SubmissionStatusRejected
		submission.RejectionReason = strings.TrimSpace(cmd.RejectionReason)
		eventType = "voter.id_document_rejected"
	}
	if err := uc.Submissions.SaveSubmission(ctx, submission); err != nil {
		return entities.IDDocumentSubmission{}, err
	}

	if decision == "approve" {
		if _, err := uc.SetVerification(ctx, SetVerificationCommand{
			VoterID: submission.VoterID,
			Kind:    entities.KindID,
			Value:   true,
		}); err != nil {
			return entities.IDDocumentSubmission{}, err
		}
	}

	if err := uc.appendSubmissionEvent(ctx, eventType, submission, now, map[string]any{
		"reviewer_id": reviewerID,
	}); err != nil {
		return entities.IDDocumentSubmission{}, err
	}
	logger.Info("id document reviewed",
		"event", "eligibility_id_document_reviewed",
		"module", "election-core/eligibility-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"voter_id", submission.VoterID,
		"decision", decision,
	)
	return submission, nil
}

func (uc ProfileUseCase) appendSubmissionEvent(
	ctx context.Context,
	eventType string,
	submission entities.IDDocumentSubmission,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"submission_id": submission.SubmissionID,
		"voter_id":      submission.VoterID,
		"id_type":       string(submission.IDType),
		"status":        string(submission.Status),
		"occurred_at":   occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newEligibilityEnvelope(eventID, eventType, submission.VoterID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
