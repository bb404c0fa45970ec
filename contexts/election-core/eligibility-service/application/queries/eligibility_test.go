package queries

import (
	"context"
	"testing"
	"time"

	"electra/contexts/election-core/eligibility-service/adapters/memory"
	"electra/contexts/election-core/eligibility-service/domain/entities"
)

func seededUseCase(profiles []entities.VoterProfile) EligibilityUseCase {
	store := memory.NewStore(profiles)
	return EligibilityUseCase{
		Voters:      store,
		Submissions: store,
		Clock:       store,
	}
}

func birthDate(yearsAgo int) *time.Time {
	value := time.Now().UTC().AddDate(-yearsAgo, 0, -1)
	return &value
}

func TestCheckEligibilityProfileNotFound(t *testing.T) {
	uc := seededUseCase(nil)
	decision, err := uc.CheckEligibility(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Eligible {
		t.Fatalf("missing profile must not be eligible")
	}
	if decision.Reason != entities.ReasonProfileNotFound {
		t.Fatalf("expected %q, got %q", entities.ReasonProfileNotFound, decision.Reason)
	}
}

func TestCheckEligibilityAlreadyVotedWinsOverVerification(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-voted",
		Email:         "voted@example.com",
		FullName:      "Voted",
		EmailVerified: true,
		PhoneVerified: true,
		IDVerified:    true,
		HasVoted:      true,
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-voted")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Eligible {
		t.Fatalf("voted profile must not be eligible")
	}
	if decision.Reason != entities.ReasonAlreadyVoted {
		t.Fatalf("expected %q, got %q", entities.ReasonAlreadyVoted, decision.Reason)
	}
	if decision.Level != entities.LevelPremium {
		t.Fatalf("level must still be derived, got %s", decision.Level)
	}
}

func TestCheckEligibilityInsufficientVerification(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-basic",
		Email:         "basic@example.com",
		FullName:      "Basic",
		EmailVerified: true,
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-basic")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Eligible {
		t.Fatalf("basic profile must not be eligible")
	}
	if decision.Reason != entities.ReasonInsufficientVerification {
		t.Fatalf("expected %q, got %q", entities.ReasonInsufficientVerification, decision.Reason)
	}
}

func TestCheckEligibilityUnderage(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-minor",
		Email:         "minor@example.com",
		FullName:      "Minor",
		EmailVerified: true,
		PhoneVerified: true,
		DateOfBirth:   birthDate(16),
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-minor")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Eligible {
		t.Fatalf("underage profile must not be eligible")
	}
	if decision.Reason != entities.ReasonUnderage {
		t.Fatalf("expected %q, got %q", entities.ReasonUnderage, decision.Reason)
	}
}

// Insufficient verification is reported before the age check, so a
// minor with only one flag sees the verification reason first.
func TestCheckEligibilityVerificationBeforeAge(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-minor-basic",
		Email:         "minorbasic@example.com",
		FullName:      "Minor Basic",
		EmailVerified: true,
		DateOfBirth:   birthDate(16),
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-minor-basic")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Reason != entities.ReasonInsufficientVerification {
		t.Fatalf("expected %q, got %q", entities.ReasonInsufficientVerification, decision.Reason)
	}
}

func TestCheckEligibilityUnknownAgePasses(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-no-dob",
		Email:         "nodob@example.com",
		FullName:      "No DOB",
		EmailVerified: true,
		IDVerified:    true,
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-no-dob")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !decision.Eligible {
		t.Fatalf("expected eligible with unknown age, got reason %q", decision.Reason)
	}
	if decision.Level != entities.LevelStandard {
		t.Fatalf("expected standard level, got %s", decision.Level)
	}
}

func TestCheckEligibilityAdult(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:       "voter-adult",
		Email:         "adult@example.com",
		FullName:      "Adult",
		EmailVerified: true,
		PhoneVerified: true,
		IDVerified:    true,
		DateOfBirth:   birthDate(30),
	}})
	decision, err := uc.CheckEligibility(context.Background(), "voter-adult")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !decision.Eligible {
		t.Fatalf("expected eligible, got reason %q", decision.Reason)
	}
	if decision.Level != entities.LevelPremium {
		t.Fatalf("expected premium level, got %s", decision.Level)
	}
}

func TestIsDuplicateNationalID(t *testing.T) {
	uc := seededUseCase([]entities.VoterProfile{{
		VoterID:    "voter-1",
		Email:      "one@example.com",
		FullName:   "One",
		NationalID: "NID-1",
	}})
	taken, err := uc.IsDuplicateNationalID(context.Background(), "NID-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !taken {
		t.Fatalf("expected NID-1 to be taken")
	}
	free, err := uc.IsDuplicateNationalID(context.Background(), "NID-2")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if free {
		t.Fatalf("expected NID-2 to be free")
	}
}
