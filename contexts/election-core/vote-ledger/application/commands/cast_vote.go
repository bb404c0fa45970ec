package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "electra/contexts/election-core/vote-ledger/application"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"
)

// CastVoteCommand is the write-model input for casting a ballot.
type CastVoteCommand struct {
	VoterID     string
	CandidateID string
	IPAddress   string
	UserAgent   string
}

// LedgerUseCase orchestrates ballot writes: the pre-cast eligibility
// gate and the atomic cast, which carries the ballot event into the
// outbox inside the same unit of work.
type LedgerUseCase struct {
	Ballots     ports.BallotRepository
	Candidates  ports.CandidateRepository
	Eligibility ports.EligibilityChecker
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// CastVote records one ballot for the voter. The repository's unique
// constraint on voter id is the hard single-vote guard; the eligibility
// gate here only fails fast with better errors. The ballot event rides
// into the outbox inside the cast unit, so a stored ballot always has
// its ballot.cast row.
func (uc LedgerUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	logger.Info("ballot cast processing started",
		"event", "ledger_cast_started",
		"module", "election-core/vote-ledger",
		"layer", "application",
		"voter_id", voterID,
		"candidate_id", candidateID,
	)
	if voterID == "" || candidateID == "" {
		logger.Warn("ballot cast validation failed",
			"event", "ledger_cast_validation_failed",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"voter_id", voterID,
			"candidate_id", candidateID,
		)
		return entities.Ballot{}, domainerrors.ErrInvalidRequest
	}

	decision, err := uc.Eligibility.Check(ctx, voterID)
	if err != nil {
		logger.Error("ballot cast eligibility check failed",
			"event", "ledger_cast_eligibility_check_failed",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"voter_id", voterID,
			"error", err.Error(),
		)
		return entities.Ballot{}, err
	}
	if !decision.Eligible {
		logger.Warn("ballot cast rejected by eligibility gate",
			"event", "ledger_cast_not_eligible",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"voter_id", voterID,
			"reason", decision.Reason,
		)
		if decision.Reason == "already voted" {
			return entities.Ballot{}, domainerrors.ErrAlreadyVoted
		}
		return entities.Ballot{}, fmt.Errorf("%w: %s", domainerrors.ErrNotEligible, decision.Reason)
	}

	if _, err := uc.Candidates.GetCandidate(ctx, candidateID); err != nil {
		return entities.Ballot{}, err
	}

	now := uc.now()
	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	ballot := entities.Ballot{
		BallotID:          ballotID,
		VoterID:           voterID,
		CandidateID:       candidateID,
		VerificationLevel: decision.Level,
		IPAddress:         strings.TrimSpace(cmd.IPAddress),
		UserAgent:         strings.TrimSpace(cmd.UserAgent),
		CastAt:            now,
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	envelope, err := newLedgerEnvelope(eventID, "ballot.cast", ballot.VoterID, now, map[string]any{
		"ballot_id":          ballot.BallotID,
		"voter_id":           ballot.VoterID,
		"candidate_id":       ballot.CandidateID,
		"verification_level": ballot.VerificationLevel,
		"cast_at":            now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.Error("ballot event envelope build failed",
			"event", "ledger_cast_envelope_failed",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"ballot_id", ballot.BallotID,
			"error", err.Error(),
		)
		return entities.Ballot{}, err
	}

	if err := uc.Ballots.CastBallot(ctx, ballot, envelope); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			logger.Warn("ballot cast lost single-vote race",
				"event", "ledger_cast_already_voted",
				"module", "election-core/vote-ledger",
				"layer", "application",
				"voter_id", voterID,
			)
		}
		return entities.Ballot{}, err
	}

	logger.Info("ballot cast completed",
		"event", "ledger_cast_completed",
		"module", "election-core/vote-ledger",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"voter_id", voterID,
		"candidate_id", candidateID,
	)
	return ballot, nil
}

func (uc LedgerUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
