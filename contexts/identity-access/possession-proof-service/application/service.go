package application

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	domainerrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	"electra/contexts/identity-access/possession-proof-service/ports"
)

const defaultSendTimeout = 5 * time.Second

// Service orchestrates the two-phase possession proof: issue a coded
// challenge over the voter's channel, then confirm it before expiry.
type Service struct {
	Challenges  ports.ChallengeRepository
	Sender      ports.CodeSender
	Codes       ports.CodeGenerator
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	SendTimeout time.Duration
	Logger      *slog.Logger
}

// IssueChallenge creates a fresh challenge and delivers its code. The
// sender call is bounded; a slow or failing provider surfaces
// ErrDependencyTimeout so callers can retry with a new challenge.
func (s Service) IssueChallenge(
	ctx context.Context,
	voterID string,
	channel entities.ProofChannel,
	destination string,
) (entities.ProofChallenge, error) {
	logger := s.resolveLogger()
	voterID = strings.TrimSpace(voterID)
	destination = strings.TrimSpace(destination)
	channel = entities.ProofChannel(strings.ToLower(strings.TrimSpace(string(channel))))
	if voterID == "" || destination == "" {
		return entities.ProofChallenge{}, domainerrors.ErrInvalidRequest
	}
	if !entities.IsValidProofChannel(channel) {
		return entities.ProofChallenge{}, domainerrors.ErrInvalidChannel
	}

	now := s.now()
	challengeID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.ProofChallenge{}, err
	}
	code, err := s.Codes.NewCode(ctx)
	if err != nil {
		return entities.ProofChallenge{}, err
	}
	challenge := entities.ProofChallenge{
		ChallengeID: challengeID,
		VoterID:     voterID,
		Channel:     channel,
		Destination: destination,
		Code:        code,
		Status:      entities.ChallengeStatusIssued,
		IssuedAt:    now,
		ExpiresAt:   now.Add(entities.ChallengeTTL),
	}

	if err := s.deliverCode(ctx, challenge); err != nil {
		logger.Warn("proof code delivery failed",
			"event", "proof_issue_delivery_failed",
			"module", "identity-access/possession-proof-service",
			"layer", "application",
			"voter_id", voterID,
			"channel", string(channel),
			"error", err.Error(),
		)
		return entities.ProofChallenge{}, domainerrors.ErrDependencyTimeout
	}
	if err := s.Challenges.SaveChallenge(ctx, challenge); err != nil {
		return entities.ProofChallenge{}, err
	}

	logger.Info("proof challenge issued",
		"event", "proof_challenge_issued",
		"module", "identity-access/possession-proof-service",
		"layer", "application",
		"challenge_id", challengeID,
		"voter_id", voterID,
		"channel", string(channel),
	)
	return challenge, nil
}

// ConfirmChallenge checks the code against an issued challenge. A wrong
// code never consumes the challenge; a correct one moves it to
// confirmed exactly once and emits the proof event.
func (s Service) ConfirmChallenge(ctx context.Context, challengeID string, code string) (entities.ProofChallenge, error) {
	logger := s.resolveLogger()
	challengeID = strings.TrimSpace(challengeID)
	code = strings.TrimSpace(code)
	if challengeID == "" || code == "" {
		return entities.ProofChallenge{}, domainerrors.ErrInvalidRequest
	}

	challenge, err := s.Challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return entities.ProofChallenge{}, err
	}
	if challenge.Status == entities.ChallengeStatusExpired {
		return entities.ProofChallenge{}, domainerrors.ErrChallengeExpired
	}
	if challenge.Resolved() {
		return entities.ProofChallenge{}, domainerrors.ErrChallengeResolved
	}

	now := s.now()
	if challenge.Expired(now) {
		challenge.Status = entities.ChallengeStatusExpired
		if err := s.Challenges.SaveChallenge(ctx, challenge); err != nil {
			return entities.ProofChallenge{}, err
		}
		return entities.ProofChallenge{}, domainerrors.ErrChallengeExpired
	}
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		logger.Warn("proof code mismatch",
			"event", "proof_confirm_code_mismatch",
			"module", "identity-access/possession-proof-service",
			"layer", "application",
			"challenge_id", challengeID,
		)
		return entities.ProofChallenge{}, domainerrors.ErrCodeMismatch
	}

	challenge.Status = entities.ChallengeStatusConfirmed
	challenge.ConfirmedAt = &now
	if err := s.Challenges.SaveChallenge(ctx, challenge); err != nil {
		return entities.ProofChallenge{}, err
	}
	s.appendProofEvent(ctx, logger, challenge, now)

	logger.Info("proof challenge confirmed",
		"event", "proof_challenge_confirmed",
		"module", "identity-access/possession-proof-service",
		"layer", "application",
		"challenge_id", challengeID,
		"voter_id", challenge.VoterID,
		"channel", string(challenge.Channel),
	)
	return challenge, nil
}

// ExpireChallenges sweeps issued challenges past their deadline.
func (s Service) ExpireChallenges(ctx context.Context, limit int) (int, error) {
	logger := s.resolveLogger()
	now := s.now()
	expirable, err := s.Challenges.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, challenge := range expirable {
		challenge.Status = entities.ChallengeStatusExpired
		if err := s.Challenges.SaveChallenge(ctx, challenge); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		logger.Info("proof challenges expired",
			"event", "proof_challenges_expired",
			"module", "identity-access/possession-proof-service",
			"layer", "application",
			"expired_count", expired,
		)
	}
	return expired, nil
}

func (s Service) deliverCode(ctx context.Context, challenge entities.ProofChallenge) error {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Sender.SendCode(sendCtx, challenge.Channel, challenge.Destination, challenge.Code)
}

func (s Service) appendProofEvent(
	ctx context.Context,
	logger *slog.Logger,
	challenge entities.ProofChallenge,
	occurredAt time.Time,
) {
	if s.Outbox == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err == nil {
		var payload []byte
		payload, err = json.Marshal(map[string]any{
			"challenge_id": challenge.ChallengeID,
			"voter_id":     challenge.VoterID,
			"channel":      string(challenge.Channel),
			"confirmed_at": occurredAt.UTC().Format(time.RFC3339Nano),
		})
		if err == nil {
			err = s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
				EventID:          eventID,
				EventType:        "possession.proof_confirmed",
				OccurredAt:       occurredAt.UTC(),
				SourceService:    "possession-proof-service",
				TraceID:          eventID,
				SchemaVersion:    1,
				PartitionKeyPath: "voter_id",
				PartitionKey:     challenge.VoterID,
				Data:             payload,
			})
		}
	}
	if err != nil {
		logger.Error("proof event outbox append failed",
			"event", "proof_event_outbox_append_failed",
			"module", "identity-access/possession-proof-service",
			"layer", "application",
			"challenge_id", challenge.ChallengeID,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
