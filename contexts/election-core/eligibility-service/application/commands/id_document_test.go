package commands

import (
	"context"
	"errors"
	"testing"

	"electra/contexts/election-core/eligibility-service/adapters/memory"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
)

func registerTestVoter(t *testing.T, uc ProfileUseCase, email string) entities.VoterProfile {
	t.Helper()
	profile, err := uc.RegisterVoter(context.Background(), RegisterVoterCommand{
		Email:    email,
		FullName: "Test Voter",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return profile
}

func TestSubmitIDDocumentPending(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	profile := registerTestVoter(t, uc, "voter@example.com")

	submission, err := uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-100",
		IDType:      entities.IDDocumentNationalID,
		DocumentRef: "s3://docs/nid-100.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Status != entities.SubmissionStatusPending {
		t.Fatalf("expected pending, got %s", submission.Status)
	}

	// Submitting does not verify anything by itself.
	current, err := uc.Voters.GetVoter(context.Background(), profile.VoterID)
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if current.IDVerified {
		t.Fatalf("submission must not set the id flag")
	}
}

func TestSubmitIDDocumentPendingExists(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	profile := registerTestVoter(t, uc, "voter@example.com")

	_, err := uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-100",
		IDType:      entities.IDDocumentPassport,
		DocumentRef: "s3://docs/passport.png",
	})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	_, err = uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-100",
		IDType:      entities.IDDocumentPassport,
		DocumentRef: "s3://docs/passport-2.png",
	})
	if !errors.Is(err, domainerrors.ErrPendingSubmissionExists) {
		t.Fatalf("expected pending submission conflict, got %v", err)
	}
}

func TestSubmitIDDocumentNationalIDOwnedByOther(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	owner, err := uc.RegisterVoter(context.Background(), RegisterVoterCommand{
		Email:      "owner@example.com",
		FullName:   "Owner",
		NationalID: "NID-200",
	})
	if err != nil {
		t.Fatalf("register owner failed: %v", err)
	}
	_ = owner
	other := registerTestVoter(t, uc, "other@example.com")

	_, err = uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     other.VoterID,
		NationalID:  "NID-200",
		IDType:      entities.IDDocumentNationalID,
		DocumentRef: "s3://docs/stolen.png",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateNationalID) {
		t.Fatalf("expected duplicate national id, got %v", err)
	}
}

func TestReviewIDDocumentApproveSetsFlag(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	profile := registerTestVoter(t, uc, "voter@example.com")

	submission, err := uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-300",
		IDType:      entities.IDDocumentDrivingLicense,
		DocumentRef: "s3://docs/license.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reviewed, err := uc.ReviewIDDocument(context.Background(), ReviewIDDocumentCommand{
		SubmissionID: submission.SubmissionID,
		Decision:     "approve",
		ReviewerID:   "admin-1",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", reviewed.Status)
	}

	current, err := uc.Voters.GetVoter(context.Background(), profile.VoterID)
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if !current.IDVerified {
		t.Fatalf("approval must set the id flag")
	}
}

func TestReviewIDDocumentReject(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	profile := registerTestVoter(t, uc, "voter@example.com")

	submission, err := uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-400",
		IDType:      entities.IDDocumentPassport,
		DocumentRef: "s3://docs/blurry.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reviewed, err := uc.ReviewIDDocument(context.Background(), ReviewIDDocumentCommand{
		SubmissionID:    submission.SubmissionID,
		Decision:        "reject",
		ReviewerID:      "admin-1",
		RejectionReason: "document unreadable",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != entities.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", reviewed.Status)
	}
	if reviewed.RejectionReason != "document unreadable" {
		t.Fatalf("expected rejection reason kept, got %q", reviewed.RejectionReason)
	}

	current, err := uc.Voters.GetVoter(context.Background(), profile.VoterID)
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if current.IDVerified {
		t.Fatalf("rejection must not set the id flag")
	}
}

func TestReviewIDDocumentAlreadyResolved(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	profile := registerTestVoter(t, uc, "voter@example.com")

	submission, err := uc.SubmitIDDocument(context.Background(), SubmitIDDocumentCommand{
		VoterID:     profile.VoterID,
		NationalID:  "NID-500",
		IDType:      entities.IDDocumentPassport,
		DocumentRef: "s3://docs/passport.png",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	_, err = uc.ReviewIDDocument(context.Background(), ReviewIDDocumentCommand{
		SubmissionID: submission.SubmissionID,
		Decision:     "approve",
		ReviewerID:   "admin-1",
	})
	if err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	_, err = uc.ReviewIDDocument(context.Background(), ReviewIDDocumentCommand{
		SubmissionID: submission.SubmissionID,
		Decision:     "reject",
		ReviewerID:   "admin-2",
	})
	if !errors.Is(err, domainerrors.ErrSubmissionAlreadyResolved) {
		t.Fatalf("expected already resolved, got %v", err)
	}
}

func TestReviewIDDocumentInvalidDecision(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newProfileUseCase(store)
	_, err := uc.ReviewIDDocument(context.Background(), ReviewIDDocumentCommand{
		SubmissionID: "sub-1",
		Decision:     "maybe",
		ReviewerID:   "admin-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidReviewDecision) {
		t.Fatalf("expected invalid decision, got %v", err)
	}
}
