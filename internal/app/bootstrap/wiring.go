package bootstrap

import (
	"context"
	"errors"

	eligibilitycommands "electra/contexts/election-core/eligibility-service/application/commands"
	eligibilityqueries "electra/contexts/election-core/eligibility-service/application/queries"
	eligibilityerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	eligibilityports "electra/contexts/election-core/eligibility-service/ports"
	ledgerentities "electra/contexts/election-core/vote-ledger/domain/entities"
	ledgerports "electra/contexts/election-core/vote-ledger/ports"
	credentialerrors "electra/contexts/identity-access/credential-service/domain/errors"
	credentialports "electra/contexts/identity-access/credential-service/ports"
	proofports "electra/contexts/identity-access/possession-proof-service/ports"
	"electra/internal/platform/messaging"
	"electra/internal/shared/events"
)

// Cross-context glue lives here so the contexts stay import-isolated.
// Each adapter converts between one context's ports and another's, or
// between a context envelope and the shared bus envelope.

type ledgerEligibility struct {
	eligibility eligibilityqueries.EligibilityUseCase
}

var _ ledgerports.EligibilityChecker = ledgerEligibility{}

func (g ledgerEligibility) Check(ctx context.Context, voterID string) (ledgerentities.EligibilityDecision, error) {
	decision, err := g.eligibility.CheckEligibility(ctx, voterID)
	if err != nil {
		return ledgerentities.EligibilityDecision{}, err
	}
	return ledgerentities.EligibilityDecision{
		Eligible: decision.Eligible,
		Reason:   decision.Reason,
		Level:    string(decision.Level),
	}, nil
}

type credentialProfiles struct {
	profiles eligibilitycommands.ProfileUseCase
}

var _ credentialports.ProfileCreator = credentialProfiles{}

func (p credentialProfiles) CreateProfile(ctx context.Context, profile credentialports.RegistrationProfile) (string, error) {
	created, err := p.profiles.RegisterVoter(ctx, eligibilitycommands.RegisterVoterCommand{
		Email:       profile.Email,
		PhoneNumber: profile.PhoneNumber,
		FullName:    profile.FullName,
		NationalID:  profile.NationalID,
		DateOfBirth: profile.DateOfBirth,
		Address:     profile.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, eligibilityerrors.ErrVoterAlreadyRegistered),
			errors.Is(err, eligibilityerrors.ErrDuplicateNationalID):
			return "", credentialerrors.ErrConflict
		case errors.Is(err, eligibilityerrors.ErrInvalidRequest):
			return "", credentialerrors.ErrInvalidRequest
		}
		return "", err
	}
	return created.VoterID, nil
}

type eligibilityPublisher struct {
	bus *messaging.Kafka
}

var _ eligibilityports.EventPublisher = eligibilityPublisher{}

func (p eligibilityPublisher) Publish(ctx context.Context, topic string, event eligibilityports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}

type eligibilitySubscriber struct {
	bus *messaging.Kafka
}

var _ eligibilityports.EventSubscriber = eligibilitySubscriber{}

func (s eligibilitySubscriber) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, eligibilityports.EventEnvelope) error,
) error {
	return s.bus.Subscribe(ctx, topic, consumerGroup, func(ctx context.Context, event events.Envelope) error {
		return handler(ctx, eligibilityports.EventEnvelope{
			EventID:          event.EventID,
			EventType:        event.EventType,
			OccurredAt:       event.OccurredAt,
			SourceService:    event.SourceService,
			TraceID:          event.TraceID,
			SchemaVersion:    event.SchemaVersion,
			PartitionKeyPath: event.PartitionKeyPath,
			PartitionKey:     event.PartitionKey,
			Data:             event.Data,
		})
	})
}

type ledgerPublisher struct {
	bus *messaging.Kafka
}

var _ ledgerports.EventPublisher = ledgerPublisher{}

func (p ledgerPublisher) Publish(ctx context.Context, topic string, event ledgerports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}

type proofPublisher struct {
	bus *messaging.Kafka
}

var _ proofports.EventPublisher = proofPublisher{}

func (p proofPublisher) Publish(ctx context.Context, topic string, event proofports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}
