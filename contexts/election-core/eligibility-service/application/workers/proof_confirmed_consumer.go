package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "electra/contexts/election-core/eligibility-service/application"
	"electra/contexts/election-core/eligibility-service/application/commands"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	"electra/contexts/election-core/eligibility-service/ports"
)

const (
	proofConfirmedTopic = "possession.proof_confirmed"
	defaultProofCG      = "eligibility-proof-cg"
)

// ProofConfirmedConsumer applies confirmed possession proofs to voter
// profiles. Email and phone flags arrive exclusively through this path;
// the id flag is owned by the document review gate.
type ProofConfirmedConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Profiles      commands.ProfileUseCase
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

// Start subscribes the eligibility side to proof confirmations with
// dedupe semantics.
func (c ProofConfirmedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultProofCG
	}
	if err := c.Subscriber.Subscribe(ctx, proofConfirmedTopic, group, c.HandleProofConfirmed); err != nil {
		logger.Error("proof consumer subscribe failed",
			"event", "eligibility_proof_consumer_subscribe_failed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"topic", proofConfirmedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("proof consumer subscription active",
		"event", "eligibility_proof_consumer_started",
		"module", "election-core/eligibility-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// HandleProofConfirmed flips the matching verification flag. Replays are
// dropped via the dedup store; SetVerification itself is idempotent, so
// a dedup miss on retry still converges.
func (c ProofConfirmedConsumer) HandleProofConfirmed(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	if alreadyProcessed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if alreadyProcessed {
		logger.Debug("possession.proof_confirmed replay skipped",
			"event", "eligibility_proof_confirmed_replayed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		VoterID string `json:"voter_id"`
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("possession.proof_confirmed payload decode failed",
			"event", "eligibility_proof_confirmed_decode_failed",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	kind := entities.VerificationKind(strings.ToLower(strings.TrimSpace(payload.Channel)))
	if kind != entities.KindEmail && kind != entities.KindPhone {
		logger.Warn("possession proof channel ignored",
			"event", "eligibility_proof_confirmed_channel_ignored",
			"module", "election-core/eligibility-service",
			"layer", "worker",
			"event_id", event.EventID,
			"channel", payload.Channel,
		)
		return nil
	}

	if _, err := c.Profiles.SetVerification(ctx, commands.SetVerificationCommand{
		VoterID: payload.VoterID,
		Kind:    kind,
		Value:   true,
	}); err != nil {
		return err
	}
	logger.Info("possession.proof_confirmed consumed",
		"event", "eligibility_proof_confirmed_consumed",
		"module", "election-core/eligibility-service",
		"layer", "worker",
		"event_id", event.EventID,
		"voter_id", strings.TrimSpace(payload.VoterID),
		"channel", string(kind),
	)
	return nil
}

func (c ProofConfirmedConsumer) reserveEvent(ctx context.Context, event ports.EventEnvelope) (bool, error) {
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

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
