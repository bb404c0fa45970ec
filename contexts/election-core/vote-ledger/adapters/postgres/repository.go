package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "electra/contexts/election-core/vote-ledger/domain/errors"
	"electra/contexts/election-core/vote-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

// CastBallot inserts the ballot, bumps the candidate tally and appends the
// ballot event to the outbox inside one transaction, so a committed ballot
// always has its outbox row. The unique index on ballots.voter_id is the
// single-vote guard; the tally moves with a server-side expression so
// concurrent casts never lose increments.
func (r *Repository) CastBallot(ctx context.Context, ballot entities.Ballot, event ports.EventEnvelope) error {
	row := ballotModelFromEntity(ballot)
	outboxRow, err := outboxModelFromEnvelope(event)
	if err != nil {
		return r.logError("ledger_repo_cast_ballot_marshal_failed", err,
			"event_id", strings.TrimSpace(event.EventID),
		)
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		result := tx.Model(&candidateModel{}).
			Where("id = ?", row.CandidateID).
			Updates(map[string]any{
				"votes":      gorm.Expr("votes + 1"),
				"updated_at": row.CastAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrCandidateNotFound
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).Create(&outboxRow).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		if errors.Is(err, domainerrors.ErrCandidateNotFound) {
			return domainerrors.ErrCandidateNotFound
		}
		return r.logError("ledger_repo_cast_ballot_failed", err,
			"ballot_id", row.ID,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (r *Repository) GetBallotByVoter(ctx context.Context, voterID string) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, r.logError("ledger_repo_get_ballot_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) CountBallots(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ballotModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_ballots_failed", err)
	}
	return int(count), nil
}

func (r *Repository) CountBallotsByCandidate(ctx context.Context, candidateID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("candidate_id = ?", strings.TrimSpace(candidateID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("ledger_repo_count_candidate_ballots_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return int(count), nil
}

func (r *Repository) CreateCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrCandidateExists
		}
		return r.logError("ledger_repo_create_candidate_failed", err,
			"candidate_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("ledger_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).Order("votes DESC, name ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_candidates_failed", err)
	}
	candidates := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.toEntity())
	}
	return candidates, nil
}

func (r *Repository) SetCandidateVotes(ctx context.Context, candidateID string, votes int, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("id = ?", strings.TrimSpace(candidateID)).
		Updates(map[string]any{
			"votes":      votes,
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ledger_repo_set_candidate_votes_failed", result.Error,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func outboxModelFromEnvelope(envelope ports.EventEnvelope) (outboxModel, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return outboxModel{}, err
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
	return row, nil
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
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error,
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
		"module", "election-core/vote-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return mapStorageError(err)
}

// mapStorageError turns a context deadline overrun into the retryable
// ErrDependencyTimeout sentinel; everything else passes through.
func mapStorageError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domainerrors.ErrDependencyTimeout, err)
	}
	return err
}

type ballotModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	VoterID           string    `gorm:"column:voter_id;uniqueIndex"`
	CandidateID       string    `gorm:"column:candidate_id"`
	VerificationLevel string    `gorm:"column:verification_level"`
	IPAddress         string    `gorm:"column:ip_address"`
	UserAgent         string    `gorm:"column:user_agent"`
	CastAt            time.Time `gorm:"column:cast_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		ID:                strings.TrimSpace(ballot.BallotID),
		VoterID:           strings.TrimSpace(ballot.VoterID),
		CandidateID:       strings.TrimSpace(ballot.CandidateID),
		VerificationLevel: strings.TrimSpace(ballot.VerificationLevel),
		IPAddress:         strings.TrimSpace(ballot.IPAddress),
		UserAgent:         strings.TrimSpace(ballot.UserAgent),
		CastAt:            ballot.CastAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:          m.ID,
		VoterID:           m.VoterID,
		CandidateID:       m.CandidateID,
		VerificationLevel: m.VerificationLevel,
		IPAddress:         m.IPAddress,
		UserAgent:         m.UserAgent,
		CastAt:            m.CastAt.UTC(),
	}
}

type candidateModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Party       string    `gorm:"column:party"`
	Description string    `gorm:"column:description"`
	Votes       int       `gorm:"column:votes"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:          strings.TrimSpace(candidate.CandidateID),
		Name:        strings.TrimSpace(candidate.Name),
		Party:       strings.TrimSpace(candidate.Party),
		Description: strings.TrimSpace(candidate.Description),
		Votes:       candidate.Votes,
		CreatedAt:   candidate.CreatedAt.UTC(),
		UpdatedAt:   candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID: m.ID,
		Name:        m.Name,
		Party:       m.Party,
		Description: m.Description,
		Votes:       m.Votes,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
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
	return "ledger_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
