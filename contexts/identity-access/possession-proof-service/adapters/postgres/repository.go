package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/identity-access/possession-proof-service/domain/entities"
	domainerrors "electra/contexts/identity-access/possession-proof-service/domain/errors"
	"electra/contexts/identity-access/possession-proof-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveChallenge(ctx context.Context, challenge entities.ProofChallenge) error {
	row := challengeModelFromEntity(challenge)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":       row.Status,
			"confirmed_at": row.ConfirmedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("proof_repo_save_challenge_failed", create.Error,
			"challenge_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetChallenge(ctx context.Context, challengeID string) (entities.ProofChallenge, error) {
	var row challengeModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(challengeID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ProofChallenge{}, domainerrors.ErrChallengeNotFound
		}
		return entities.ProofChallenge{}, r.logError("proof_repo_get_challenge_failed", err,
			"challenge_id", strings.TrimSpace(challengeID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListExpirable(ctx context.Context, cutoff time.Time, limit int) ([]entities.ProofChallenge, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []challengeModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.ChallengeStatusIssued)).
		Where("expires_at <= ?", cutoff.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("proof_repo_list_expirable_failed", err, "limit", limit)
	}
	items := make([]entities.ProofChallenge, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("proof_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("proof_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("proof_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("proof_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "identity-access/possession-proof-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("proof repository operation failed", fields...)
	return err
}

type challengeModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	VoterID     string     `gorm:"column:voter_id"`
	Channel     string     `gorm:"column:channel"`
	Destination string     `gorm:"column:destination"`
	Code        string     `gorm:"column:code"`
	Status      string     `gorm:"column:status"`
	IssuedAt    time.Time  `gorm:"column:issued_at"`
	ExpiresAt   time.Time  `gorm:"column:expires_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
}

func (challengeModel) TableName() string {
	return "proof_challenges"
}

func challengeModelFromEntity(challenge entities.ProofChallenge) challengeModel {
	var confirmedAt *time.Time
	if challenge.ConfirmedAt != nil {
		timestamp := challenge.ConfirmedAt.UTC()
		confirmedAt = &timestamp
	}
	return challengeModel{
		ID:          strings.TrimSpace(challenge.ChallengeID),
		VoterID:     strings.TrimSpace(challenge.VoterID),
		Channel:     string(challenge.Channel),
		Destination: strings.TrimSpace(challenge.Destination),
		Code:        challenge.Code,
		Status:      string(challenge.Status),
		IssuedAt:    challenge.IssuedAt.UTC(),
		ExpiresAt:   challenge.ExpiresAt.UTC(),
		ConfirmedAt: confirmedAt,
	}
}

func (m challengeModel) toEntity() entities.ProofChallenge {
	var confirmedAt *time.Time
	if m.ConfirmedAt != nil {
		timestamp := m.ConfirmedAt.UTC()
		confirmedAt = &timestamp
	}
	return entities.ProofChallenge{
		ChallengeID: m.ID,
		VoterID:     m.VoterID,
		Channel:     entities.ProofChannel(m.Channel),
		Destination: m.Destination,
		Code:        m.Code,
		Status:      entities.ChallengeStatus(m.Status),
		IssuedAt:    m.IssuedAt.UTC(),
		ExpiresAt:   m.ExpiresAt.UTC(),
		ConfirmedAt: confirmedAt,
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "proof_outbox"
}

var _ ports.ChallengeRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
