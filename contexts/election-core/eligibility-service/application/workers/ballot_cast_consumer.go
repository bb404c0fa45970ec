package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "electra/contexts/election-core/eligibility-service/application"
	"electra/contexts/election-core/eligibility-service/application/commands"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	"electra/contexts/election-core/eligibility-service/ports"
)

const (
	ballotCastTopic = "ballot.cast"
	defaultBallotCG = "eligibility-ballot-cg"
)

// BallotCastConsumer projects cast ballots onto voter profiles so the
// eligibility read model reports "already voted" without consulting the
// ledger.
type BallotCastConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Profiles      commands.ProfileUseCase
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c BallotCastConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultBallotCG
	}
	if err := c.Subscriber.Subscribe(ctx, ballotCastTopic, group, c.HandleBallotCast); err != nil {
		logger.Error("ballot consumer subscribe failed",
			"event", "eligibility_ballot_consumer_subscribe_failed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"topic", ballotCastTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("ballot consumer subscription active",
		"event", "eligibility_ballot_consumer_started",
		"module", "election-core/eligibility-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// HandleBallotCast marks the voter as having voted. An unknown voter is
// logged and dropped, not retried: the ledger accepted the ballot, so a
// missing profile is an operator problem, not a transient one.
func (c BallotCastConsumer) HandleBallotCast(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	if alreadyProcessed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if alreadyProcessed {
		logger.Debug("ballot.cast replay skipped",
			"event", "eligibility_ballot_cast_replayed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		VoterID string `json:"voter_id"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ballot.cast payload decode failed",
			"event", "eligibility_ballot_cast_decode_failed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	if _, err := c.Profiles.MarkVoted(ctx, payload.VoterID); err != nil {
		if errors.Is(err, domainerrors.ErrVoterNotFound) {
			logger.Warn("ballot.cast references unknown voter",
				"event", "eligibility_ballot_cast_voter_missing",
				"module", "election-core/eligibility-service",
				"layer", "worker",
				"event_id", event.EventID,
				"voter_id", strings.TrimSpace(payload.VoterID),
			)
			return nil
		}
		return err
	}
	logger.Info("ballot.cast consumed",
		"event", "eligibility_ballot_cast_consumed",
		"module", "election-core/eligibility-service",
		"layer", "worker",
		"event_id", event.EventID,
		"voter_id", strings.TrimSpace(payload.VoterID),
	)
	return nil
}

func (c BallotCastConsumer) reserveEvent(ctx context.Context, event ports.EventEnvelope) (bool, error) {
	if c.Dedup == nil {
		return false, nil
	}
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(ttl))
}
