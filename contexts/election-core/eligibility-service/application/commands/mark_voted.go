package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/eligibility-service/application"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
)

// MarkVoted projects a recorded ballot onto the profile. The ballot
// ledger's unique constraint is the real single-vote guard; this flag
// only feeds the eligibility read model. Idempotent.
func (uc ProfileUseCase) MarkVoted(ctx context.Context, voterID string) (entities.VoterProfile, error) {
	logger := application.ResolveLogger(uc.Logger)
	trimmed := strings.TrimSpace(voterID)
	if trimmed == "" {
		return entities.VoterProfile{}, domainerrors.ErrInvalidRequest
	}

	profile, err := uc.Voters.GetVoter(ctx, trimmed)
	if err != nil {
		return entities.VoterProfile{}, err
	}
	if profile.HasVoted {
		return profile, nil
	}

	profile.HasVoted = true
	profile.UpdatedAt = uc.now()
	if err := uc.Voters.SaveVoter(ctx, profile); err != nil {
		logger.Error("voter has-voted projection save failed",
			"event", "eligibility_mark_voted_save_failed",
			"module", "election-core/eligibility-service",
			"layer", "application",
			"voter_id", trimmed,
			"error", err.Error(),
		)
		return entities.VoterProfile{}, err
	}

	logger.Info("voter marked as having voted",
		"event", "eligibility_mark_voted_completed",
		"module", "election-core/eligibility-service",
		"layer", "application",
		"voter_id", trimmed,
	)
	return profile, nil
}
