package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "electra/contexts/election-core/vote-ledger/application"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"
)

// ResultsUseCase serves the ledger read side: ballot lookups, candidate
// listings, aggregate results and the stored-tally recount audit.
type ResultsUseCase struct {
	Ballots    ports.BallotRepository
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc ResultsUseCase) GetBallotByVoter(ctx context.Context, voterID string) (entities.Ballot, error) {
	trimmed := strings.TrimSpace(voterID)
	if trimmed == "" {
		return entities.Ballot{}, domainerrors.ErrInvalidRequest
	}
	return uc.Ballots.GetBallotByVoter(ctx, trimmed)
}

func (uc ResultsUseCase) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	trimmed := strings.TrimSpace(candidateID)
	if trimmed == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidRequest
	}
	return uc.Candidates.GetCandidate(ctx, trimmed)
}

// ListCandidates returns candidates ordered by tally descending, name
// ascending on ties, so the results page is stable between refreshes.
func (uc ResultsUseCase) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	candidates, err := uc.Candidates.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Votes != candidates[j].Votes {
			return candidates[i].Votes > candidates[j].Votes
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates, nil
}

func (uc ResultsUseCase) Results(ctx context.Context) (entities.ElectionResults, error) {
	candidates, err := uc.ListCandidates(ctx)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	total, err := uc.Ballots.CountBallots(ctx)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	return entities.ElectionResults{
		TotalBallots: total,
		Candidates:   candidates,
	}, nil
}

// RecountCandidate derives the candidate's tally from the ballot ledger
// and repairs the stored counter when the two disagree. The ledger is
// authoritative; the stored tally is a read optimisation.
func (uc ResultsUseCase) RecountCandidate(ctx context.Context, candidateID string) (entities.RecountReport, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidate, err := uc.GetCandidate(ctx, candidateID)
	if err != nil {
		return entities.RecountReport{}, err
	}
	derived, err := uc.Ballots.CountBallotsByCandidate(ctx, candidate.CandidateID)
	if err != nil {
		return entities.RecountReport{}, err
	}

	report := entities.RecountReport{
		CandidateID:  candidate.CandidateID,
		StoredVotes:  candidate.Votes,
		DerivedVotes: derived,
	}
	if derived == candidate.Votes {
		return report, nil
	}

	logger.Warn("candidate tally drift detected",
		"event", "ledger_recount_drift_detected",
		"module", "election-core/vote-ledger",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"stored_votes", candidate.Votes,
		"derived_votes", derived,
	)
	if err := uc.Candidates.SetCandidateVotes(ctx, candidate.CandidateID, derived, uc.now()); err != nil {
		return entities.RecountReport{}, err
	}
	report.Corrected = true
	return report, nil
}

func (uc ResultsUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
