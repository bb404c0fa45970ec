package queries

import (
	"context"
	"errors"
	"strings"
	"time"

	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	"electra/contexts/election-core/eligibility-service/ports"
)

// EligibilityUseCase serves the read side: the voting-eligibility gate,
// duplicate national-id lookups and plain profile/submission reads.
// Every method is mutation-free and safe to call repeatedly.
type EligibilityUseCase struct {
	Voters      ports.VoterRepository
	Submissions ports.SubmissionRepository
	Clock       ports.Clock
}

// CheckEligibility evaluates the gate in fixed order, first failing
// check wins: missing profile, already voted, insufficient verification,
// underage. Level and eligibility are recomputed here rather than
// trusted from any caller-cached value.
func (uc EligibilityUseCase) CheckEligibility(ctx context.Context, voterID string) (entities.EligibilityDecision, error) {
	profile, err := uc.Voters.GetVoter(ctx, strings.TrimSpace(voterID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrVoterNotFound) {
			return entities.EligibilityDecision{
				Eligible: false,
				Reason:   entities.ReasonProfileNotFound,
				Level:    entities.LevelBasic,
			}, nil
		}
		return entities.EligibilityDecision{}, err
	}

	level, eligible := entities.DeriveLevel(profile.EmailVerified, profile.PhoneVerified, profile.IDVerified)

	if profile.HasVoted {
		return entities.EligibilityDecision{
			Eligible: false,
			Reason:   entities.ReasonAlreadyVoted,
			Level:    level,
		}, nil
	}
	if !eligible {
		return entities.EligibilityDecision{
			Eligible: false,
			Reason:   entities.ReasonInsufficientVerification,
			Level:    level,
		}, nil
	}
	if age, known := profile.AgeAt(uc.now()); known && age < entities.MinimumVotingAge {
		return entities.EligibilityDecision{
			Eligible: false,
			Reason:   entities.ReasonUnderage,
			Level:    level,
		}, nil
	}
	return entities.EligibilityDecision{Eligible: true, Level: level}, nil
}

// IsDuplicateNationalID reports whether any profile already holds the
// exact id. Empty input is never a duplicate: the field is optional.
// The lookup is advisory; the persistence constraint is authoritative.
func (uc EligibilityUseCase) IsDuplicateNationalID(ctx context.Context, nationalID string) (bool, error) {
	trimmed := strings.TrimSpace(nationalID)
	if trimmed == "" {
		return false, nil
	}
	_, taken, err := uc.Voters.FindVoterByNationalID(ctx, trimmed)
	if err != nil {
		return false, err
	}
	return taken, nil
}

func (uc EligibilityUseCase) GetProfile(ctx context.Context, voterID string) (entities.VoterProfile, error) {
	if strings.TrimSpace(voterID) == "" {
		return entities.VoterProfile{}, domainerrors.ErrInvalidRequest
	}
	return uc.Voters.GetVoter(ctx, strings.TrimSpace(voterID))
}

func (uc EligibilityUseCase) ListSubmissions(ctx context.Context, status entities.SubmissionStatus) ([]entities.IDDocumentSubmission, error) {
	return uc.Submissions.ListSubmissionsByStatus(ctx, status)
}

func (uc EligibilityUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
