package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"electra/contexts/election-core/vote-ledger/adapters/memory"
	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"
)

func newResults(store *memory.Store) ResultsUseCase {
	return ResultsUseCase{
		Ballots:    store,
		Candidates: store,
		Clock:      store,
	}
}

func castBallot(t *testing.T, store *memory.Store, voterID string, candidateID string) {
	t.Helper()
	err := store.CastBallot(context.Background(), entities.Ballot{
		BallotID:    "ballot-" + voterID,
		VoterID:     voterID,
		CandidateID: candidateID,
		CastAt:      time.Now().UTC(),
	}, ports.EventEnvelope{
		EventID:   "event-" + voterID,
		EventType: "ballot.cast",
	})
	if err != nil {
		t.Fatalf("cast %s failed: %v", voterID, err)
	}
}

func TestListCandidatesOrdering(t *testing.T) {
	store := memory.NewStore([]entities.Candidate{
		{CandidateID: "cand-b", Name: "Bravo"},
		{CandidateID: "cand-a", Name: "Alpha"},
		{CandidateID: "cand-c", Name: "Charlie"},
	})
	castBallot(t, store, "v1", "cand-c")
	castBallot(t, store, "v2", "cand-c")
	castBallot(t, store, "v3", "cand-a")

	uc := newResults(store)
	candidates, err := uc.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].CandidateID != "cand-c" {
		t.Fatalf("expected cand-c first, got %s", candidates[0].CandidateID)
	}
	// Alpha and Bravo both have lower tallies; ties break by name.
	if candidates[1].CandidateID != "cand-a" || candidates[2].CandidateID != "cand-b" {
		t.Fatalf("unexpected order: %s then %s", candidates[1].CandidateID, candidates[2].CandidateID)
	}
}

func TestResultsTotals(t *testing.T) {
	store := memory.NewStore([]entities.Candidate{
		{CandidateID: "cand-a", Name: "Alpha"},
		{CandidateID: "cand-b", Name: "Bravo"},
	})
	castBallot(t, store, "v1", "cand-a")
	castBallot(t, store, "v2", "cand-b")
	castBallot(t, store, "v3", "cand-a")

	uc := newResults(store)
	results, err := uc.Results(context.Background())
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.TotalBallots != 3 {
		t.Fatalf("expected 3 ballots, got %d", results.TotalBallots)
	}
	if results.Candidates[0].CandidateID != "cand-a" || results.Candidates[0].Votes != 2 {
		t.Fatalf("unexpected leader: %+v", results.Candidates[0])
	}
}

func TestGetBallotByVoter(t *testing.T) {
	store := memory.NewStore([]entities.Candidate{{CandidateID: "cand-a", Name: "Alpha"}})
	castBallot(t, store, "v1", "cand-a")

	uc := newResults(store)
	ballot, err := uc.GetBallotByVoter(context.Background(), "v1")
	if err != nil {
		t.Fatalf("get ballot failed: %v", err)
	}
	if ballot.CandidateID != "cand-a" {
		t.Fatalf("expected cand-a, got %s", ballot.CandidateID)
	}

	_, err = uc.GetBallotByVoter(context.Background(), "v2")
	if !errors.Is(err, domainerrors.ErrBallotNotFound) {
		t.Fatalf("expected ballot not found, got %v", err)
	}
}

func TestRecountCandidateNoDrift(t *testing.T) {
	store := memory.NewStore([]entities.Candidate{{CandidateID: "cand-a", Name: "Alpha"}})
	castBallot(t, store, "v1", "cand-a")

	uc := newResults(store)
	report, err := uc.RecountCandidate(context.Background(), "cand-a")
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if report.Corrected {
		t.Fatalf("expected no correction")
	}
	if report.StoredVotes != 1 || report.DerivedVotes != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRecountCandidateRepairsDrift(t *testing.T) {
	store := memory.NewStore([]entities.Candidate{{CandidateID: "cand-a", Name: "Alpha", Votes: 7}})
	castBallot(t, store, "v1", "cand-a")

	uc := newResults(store)
	report, err := uc.RecountCandidate(context.Background(), "cand-a")
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if !report.Corrected {
		t.Fatalf("expected correction for drifted tally")
	}
	if report.StoredVotes != 8 || report.DerivedVotes != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	candidate, err := store.GetCandidate(context.Background(), "cand-a")
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if candidate.Votes != 1 {
		t.Fatalf("expected stored tally repaired to 1, got %d", candidate.Votes)
	}
}
