package commands

import (
	"context"
	"strings"

	application "electra/contexts/election-core/vote-ledger/application"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
)

// AddCandidateCommand registers a candidate on the ballot paper.
type AddCandidateCommand struct {
	Name        string
	Party       string
	Description string
}

// AddCandidate creates a candidate with a zero tally.
func (uc LedgerUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidRequest
	}

	now := uc.now()
	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		CandidateID: candidateID,
		Name:        name,
		Party:       strings.TrimSpace(cmd.Party),
		Description: strings.TrimSpace(cmd.Description),
		Votes:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Candidates.CreateCandidate(ctx, candidate); err != nil {
		logger.Error("candidate create failed",
			"event", "ledger_candidate_create_failed",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"candidate_id", candidateID,
			"error", err.Error(),
		)
		return entities.Candidate{}, err
	}

	logger.Info("candidate created",
		"event", "ledger_candidate_created",
		"module", "election-core/vote-ledger",
		"layer", "application",
		"candidate_id", candidateID,
	)
	return candidate, nil
}
