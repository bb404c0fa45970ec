package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "electra/contexts/election-core/eligibility-service/application"
	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	"electra/contexts/election-core/eligibility-service/ports"
)

// RegisterVoterCommand is the write-model input for voter registration.
type RegisterVoterCommand struct {
	Email       string
	PhoneNumber string
	FullName    string
	NationalID  string
	DateOfBirth *time.Time
	Address     string
}

// SetVerificationCommand applies one possession-proof outcome to a profile.
type SetVerificationCommand struct {
	VoterID string
	Kind    entities.VerificationKind
	Value   bool
}

// ProfileUseCase orchestrates voter profile writes: registration,
// verification flag updates and the derived level/eligibility recompute.
type ProfileUseCase struct {
	Voters      ports.VoterRepository
	Submissions ports.SubmissionRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// RegisterVoter creates a fresh profile: every flag false, level basic,
// not eligible, no ballot cast. The repository's national-id uniqueness
// constraint is authoritative; the pre-check here only rejects early.
func (uc ProfileUseCase) RegisterVoter(ctx context.Context, cmd RegisterVoterCommand) (entities.VoterProfile, error) {
	logger := application.ResolveLogger(uc.Logger)
	email := strings.TrimSpace(strings.ToLower(cmd.Email))
	fullName := strings.TrimSpace(cmd.FullName)
	if email == "" || fullName == "" {
		logger.Warn("voter registration validation failed",
			"event", "eligibility_register_validation_failed",
			"module", "election-core/eligibility-service",
			"layer", "application",
			"email", email,
		)
		return entities.VoterProfile{}, domainerrors.ErrInvalidRequest
	}

	nationalID := strings.TrimSpace(cmd.NationalID)
	if nationalID != "" {
		if _, taken, err := uc.Voters.FindVoterByNationalID(ctx, nationalID); err != nil {
			return entities.VoterProfile{}, err
		} else if taken {
			return entities.VoterProfile{}, domainerrors.ErrDuplicateNationalID
		}
	}

	voterID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoterProfile{}, err
	}
	now := uc.now()
	profile := entities.VoterProfile{
		VoterID:      voterID,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(cmd.PhoneNumber),
		FullName:     fullName,
		NationalID:   nationalID,
		DateOfBirth:  normalizeDate(cmd.DateOfBirth),
		Address:      strings.TrimSpace(cmd.Address),
		Level:        entities.LevelBasic,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := uc.Voters.CreateVoter(ctx, profile); err != nil {
		return entities.VoterProfile{}, err
	}
	if err := uc.appendProfileEvent(ctx, "voter.registered", profile, now, nil); err != nil {
		return entities.VoterProfile{}, err
	}
	logger.Info("voter registered",
		"event", "eligibility_voter_registered",
		"module", "election-core/eligibility-service",
		"layer", "application",
		"voter_id", profile.VoterID,
	)
	return profile, nil
}

// SetVerification persists one flag change and recomputes the derived
// level and eligibility. The operation is idempotent: replaying the same
// (kind, value) pair yields an identical profile. Flags never regress.
func (uc ProfileUseCase) SetVerification(ctx context.Context, cmd SetVerificationCommand) (entities.VoterProfile, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	if voterID == "" {
		return entities.VoterProfile{}, domainerrors.ErrInvalidRequest
	}
	if !entities.IsValidVerificationKind(cmd.Kind) {
		logger.Warn("verification kind rejected",
			"event", "eligibility_set_verification_invalid_kind",
			"module", "election-core/eligibility-service",
			"layer", "application",
			"voter_id", voterID,
			"kind", string(cmd.Kind),
		)
		return entities.VoterProfile{}, domainerrors.ErrInvalidVerificationKind
	}

	profile, err := uc.Voters.GetVoter(ctx, voterID)
	if err != nil {
		return entities.VoterProfile{}, err
	}

	before := profile
	profile.SetFlag(cmd.Kind, cmd.Value)
	profile.Recompute()
	if profile.Flag(cmd.Kind) == before.Flag(cmd.Kind) &&
		profile.Level == before.Level &&
		profile.VotingEligible == before.VotingEligible {
		// Replay of an already-applied outcome: no write, no event.
		return profile, nil
	}

	now := uc.now()
	profile.UpdatedAt = now
	if err := uc.Voters.SaveVoter(ctx, profile); err != nil {
		return entities.VoterProfile{}, err
	}
	if err := uc.appendProfileEvent(ctx, "voter.verification_updated", profile, now, map[string]any{
		"kind":  string(cmd.Kind),
		"value": cmd.Value,
	}); err != nil {
		return entities.VoterProfile{}, err
	}
	logger.Info("verification flag applied",
		"event", "eligibility_verification_updated",
		"module", "election-core/eligibility-service",
		"layer", "application",
		"voter_id", profile.VoterID,
		"kind", string(cmd.Kind),
		"level", string(profile.Level),
		"voting_eligible", profile.VotingEligible,
	)
	return profile, nil
}

func (uc ProfileUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc ProfileUseCase) appendProfileEvent(
	ctx context.Context,
	eventType string,
	profile entities.VoterProfile,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"voter_id":        profile.VoterID,
		"level":           string(profile.Level),
		"voting_eligible": profile.VotingEligible,
		"has_voted":       profile.HasVoted,
		"occurred_at":     occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newEligibilityEnvelope(eventID, eventType, profile.VoterID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func normalizeDate(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}
