package commands

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"electra/contexts/election-core/vote-ledger/adapters/memory"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"
)

type stubEligibility struct {
	decision entities.EligibilityDecision
	err      error
}

func (s stubEligibility) Check(_ context.Context, _ string) (entities.EligibilityDecision, error) {
	return s.decision, s.err
}

func eligibleVoter(level string) stubEligibility {
	return stubEligibility{decision: entities.EligibilityDecision{Eligible: true, Level: level}}
}

func seedCandidates() []entities.Candidate {
	return []entities.Candidate{
		{CandidateID: "cand-1", Name: "Ada", Party: "Analytical", CreatedAt: time.Now().UTC()},
		{CandidateID: "cand-2", Name: "Grace", Party: "Compiler", CreatedAt: time.Now().UTC()},
	}
}

func newLedger(store *memory.Store, eligibility stubEligibility) LedgerUseCase {
	return LedgerUseCase{
		Ballots:     store,
		Candidates:  store,
		Eligibility: eligibility,
		Clock:       store,
		IDGen:       store,
	}
}

func TestCastVoteRecordsBallot(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, eligibleVoter("standard"))

	ballot, err := uc.CastVote(context.Background(), CastVoteCommand{
		VoterID:     "voter-1",
		CandidateID: "cand-1",
		IPAddress:   "203.0.113.9",
		UserAgent:   "curl/8.0",
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if ballot.VerificationLevel != "standard" {
		t.Fatalf("expected level snapshot on the ballot, got %s", ballot.VerificationLevel)
	}

	candidate, err := store.GetCandidate(context.Background(), "cand-1")
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if candidate.Votes != 1 {
		t.Fatalf("expected tally 1, got %d", candidate.Votes)
	}
}

func TestCastVoteQueuesBallotEventWithBallot(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, eligibleVoter("standard"))

	ballot, err := uc.CastVote(context.Background(), CastVoteCommand{
		VoterID:     "voter-1",
		CandidateID: "cand-1",
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending outbox row, got %d", len(pending))
	}
	if pending[0].EventType != "ballot.cast" {
		t.Fatalf("expected ballot.cast, got %s", pending[0].EventType)
	}
	if pending[0].PartitionKey != "voter-1" {
		t.Fatalf("expected voter partition key, got %s", pending[0].PartitionKey)
	}
	var envelope ports.EventEnvelope
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	var data map[string]any
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["ballot_id"] != ballot.BallotID {
		t.Fatalf("expected ballot id %s in event, got %v", ballot.BallotID, data["ballot_id"])
	}
}

type rejectingBallots struct {
	*memory.Store
	err error
}

func (r rejectingBallots) CastBallot(context.Context, entities.Ballot, ports.EventEnvelope) error {
	return r.err
}

func TestCastVoteFailedCastQueuesNothing(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	castErr := errors.New("outbox insert failed")
	uc := newLedger(store, eligibleVoter("standard"))
	uc.Ballots = rejectingBallots{Store: store, err: castErr}

	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		VoterID:     "voter-1",
		CandidateID: "cand-1",
	})
	if !errors.Is(err, castErr) {
		t.Fatalf("expected the cast failure to surface, got %v", err)
	}

	// Ballot and event share fate: neither may exist after a failed cast.
	if _, err := store.GetBallotByVoter(context.Background(), "voter-1"); !errors.Is(err, domainerrors.ErrBallotNotFound) {
		t.Fatalf("expected no ballot, got %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox, got %d rows", len(pending))
	}
}

func TestCastVoteSecondBallotRejected(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, eligibleVoter("premium"))

	if _, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-1"}); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	_, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-2"})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}

	// The losing cast must not bump any tally.
	candidate, err := store.GetCandidate(context.Background(), "cand-2")
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if candidate.Votes != 0 {
		t.Fatalf("expected tally 0 for cand-2, got %d", candidate.Votes)
	}
}

func TestCastVoteNotEligibleCarriesReason(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, stubEligibility{decision: entities.EligibilityDecision{
		Eligible: false,
		Reason:   "insufficient verification",
		Level:    "basic",
	}})

	_, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-1"})
	if !errors.Is(err, domainerrors.ErrNotEligible) {
		t.Fatalf("expected not eligible, got %v", err)
	}
	if err.Error() != "voter is not eligible to vote: insufficient verification" {
		t.Fatalf("expected reason in message, got %q", err.Error())
	}
}

func TestCastVoteAlreadyVotedFromGate(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, stubEligibility{decision: entities.EligibilityDecision{
		Eligible: false,
		Reason:   "already voted",
		Level:    "premium",
	}})

	_, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-1"})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted from the gate, got %v", err)
	}
}

func TestCastVoteUnknownCandidate(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, eligibleVoter("standard"))

	_, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-404"})
	if !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected candidate not found, got %v", err)
	}
}

func TestCastVoteGateRunsBeforeCandidateLookup(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, stubEligibility{decision: entities.EligibilityDecision{
		Eligible: false,
		Reason:   "insufficient verification",
		Level:    "basic",
	}})

	// An ineligible voter naming an unknown candidate learns about the
	// gate, not about the candidate catalogue.
	_, err := uc.CastVote(context.Background(), CastVoteCommand{VoterID: "voter-1", CandidateID: "cand-404"})
	if !errors.Is(err, domainerrors.ErrNotEligible) {
		t.Fatalf("expected not eligible, got %v", err)
	}
}

func TestCastVoteConcurrentSingleWinner(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	uc := newLedger(store, eligibleVoter("standard"))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = uc.CastVote(context.Background(), CastVoteCommand{
				VoterID:     "voter-race",
				CandidateID: "cand-1",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrAlreadyVoted):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winning cast, got %d", succeeded)
	}

	candidate, err := store.GetCandidate(context.Background(), "cand-1")
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if candidate.Votes != 1 {
		t.Fatalf("expected tally 1 after the race, got %d", candidate.Votes)
	}
}

func TestAddCandidateStartsAtZero(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newLedger(store, eligibleVoter("standard"))

	candidate, err := uc.AddCandidate(context.Background(), AddCandidateCommand{
		Name:        "Ada",
		Party:       "Analytical",
		Description: "First",
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if candidate.Votes != 0 {
		t.Fatalf("expected zero tally, got %d", candidate.Votes)
	}
}

func TestAddCandidateValidation(t *testing.T) {
	store := memory.NewStore(nil)
	uc := newLedger(store, eligibleVoter("standard"))

	_, err := uc.AddCandidate(context.Background(), AddCandidateCommand{Name: "  "})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
