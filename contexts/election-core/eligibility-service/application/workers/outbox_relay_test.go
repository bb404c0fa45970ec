package workers

import (
	"context"
	"testing"

	"electra/contexts/election-core/eligibility-service/adapters/memory"
	"electra/contexts/election-core/eligibility-service/application/commands"
	"electra/contexts/election-core/eligibility-service/ports"
)

type capturingPublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestOutboxRelayPublishesAndDrains(t *testing.T) {
	store := memory.NewStore(nil)
	uc := commands.ProfileUseCase{
		Voters: store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}
	if _, err := uc.RegisterVoter(context.Background(), commands.RegisterVoterCommand{
		Email:    "voter@example.com",
		FullName: "Voter",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	if publisher.topics[0] != "voter.registered" {
		t.Fatalf("expected voter.registered topic, got %s", publisher.topics[0])
	}
	if publisher.events[0].SchemaVersion != 1 {
		t.Fatalf("expected schema version 1, got %d", publisher.events[0].SchemaVersion)
	}

	// A second pass finds nothing pending.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("published rows must not be replayed, got %d events", len(publisher.events))
	}
}
