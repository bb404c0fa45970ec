package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"electra/contexts/election-core/eligibility-service/adapters/memory"
	"electra/contexts/election-core/eligibility-service/application/commands"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	"electra/contexts/election-core/eligibility-service/ports"
)

func ballotEvent(eventID string, voterID string) ports.EventEnvelope {
	data, _ := json.Marshal(map[string]string{"voter_id": voterID})
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     "ballot.cast",
		OccurredAt:    time.Now().UTC(),
		SourceService: "vote-ledger",
		SchemaVersion: 1,
		PartitionKey:  voterID,
		Data:          data,
	}
}

func proofEvent(eventID string, voterID string, channel string) ports.EventEnvelope {
	data, _ := json.Marshal(map[string]string{"voter_id": voterID, "channel": channel})
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     "possession.proof_confirmed",
		OccurredAt:    time.Now().UTC(),
		SourceService: "possession-proof-service",
		SchemaVersion: 1,
		PartitionKey:  voterID,
		Data:          data,
	}
}

func TestHandleBallotCastMarksVoted(t *testing.T) {
	store := memory.NewStore([]entities.VoterProfile{{
		VoterID:  "voter-1",
		Email:    "voter@example.com",
		FullName: "Voter",
	}})
	consumer := BallotCastConsumer{
		Dedup: store,
		Profiles: commands.ProfileUseCase{
			Voters: store,
			Clock:  store,
			IDGen:  store,
		},
		Clock: store,
	}

	if err := consumer.HandleBallotCast(context.Background(), ballotEvent("evt-1", "voter-1")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	profile, err := store.GetVoter(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if !profile.HasVoted {
		t.Fatalf("expected has_voted projection")
	}
}

func TestHandleBallotCastReplayDropped(t *testing.T) {
	store := memory.NewStore([]entities.VoterProfile{{
		VoterID:  "voter-1",
		Email:    "voter@example.com",
		FullName: "Voter",
	}})
	consumer := BallotCastConsumer{
		Dedup: store,
		Profiles: commands.ProfileUseCase{
			Voters: store,
			Clock:  store,
			IDGen:  store,
		},
		Clock: store,
	}

	event := ballotEvent("evt-dup", "voter-1")
	if err := consumer.HandleBallotCast(context.Background(), event); err != nil {
		t.Fatalf("first handle failed: %v", err)
	}
	if err := consumer.HandleBallotCast(context.Background(), event); err != nil {
		t.Fatalf("replay must be dropped silently: %v", err)
	}
}

func TestHandleBallotCastUnknownVoterNotRetried(t *testing.T) {
	store := memory.NewStore(nil)
	consumer := BallotCastConsumer{
		Dedup: store,
		Profiles: commands.ProfileUseCase{
			Voters: store,
			Clock:  store,
			IDGen:  store,
		},
		Clock: store,
	}
	if err := consumer.HandleBallotCast(context.Background(), ballotEvent("evt-ghost", "ghost")); err != nil {
		t.Fatalf("unknown voter must not surface an error: %v", err)
	}
}

func TestHandleProofConfirmedSetsFlag(t *testing.T) {
	store := memory.NewStore([]entities.VoterProfile{{
		VoterID:  "voter-1",
		Email:    "voter@example.com",
		FullName: "Voter",
	}})
	consumer := ProofConfirmedConsumer{
		Dedup: store,
		Profiles: commands.ProfileUseCase{
			Voters: store,
			Clock:  store,
			IDGen:  store,
		},
		Clock: store,
	}

	if err := consumer.HandleProofConfirmed(context.Background(), proofEvent("evt-p1", "voter-1", "email")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	profile, err := store.GetVoter(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if !profile.EmailVerified {
		t.Fatalf("expected email flag set")
	}
}

func TestHandleProofConfirmedIgnoresUnknownChannel(t *testing.T) {
	store := memory.NewStore([]entities.VoterProfile{{
		VoterID:  "voter-1",
		Email:    "voter@example.com",
		FullName: "Voter",
	}})
	consumer := ProofConfirmedConsumer{
		Dedup: store,
		Profiles: commands.ProfileUseCase{
			Voters: store,
			Clock:  store,
			IDGen:  store,
		},
		Clock: store,
	}

	if err := consumer.HandleProofConfirmed(context.Background(), proofEvent("evt-p2", "voter-1", "carrier-pigeon")); err != nil {
		t.Fatalf("unknown channel must be dropped: %v", err)
	}
	profile, err := store.GetVoter(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if profile.EmailVerified || profile.PhoneVerified || profile.IDVerified {
		t.Fatalf("no flag may change for an unknown channel")
	}
}
