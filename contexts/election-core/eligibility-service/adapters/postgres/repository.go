package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/election-core/eligibility-service/domain/entities"
	domainerrors "electra/contexts/election-core/eligibility-service/domain/errors"
	"electra/contexts/election-core/eligibility-service/ports"

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

func (r *Repository) CreateVoter(ctx context.Context, profile entities.VoterProfile) error {
	row := voterModelFromEntity(profile)
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			// Either the primary key or the national-id unique index fired;
			// a taken national id is the case callers can act upon.
			if strings.TrimSpace(profile.NationalID) != "" {
				return domainerrors.ErrDuplicateNationalID
			}
			return domainerrors.ErrVoterAlreadyRegistered
		}
		return r.logError("eligibility_repo_create_voter_failed", create.Error,
			"voter_id", strings.TrimSpace(profile.VoterID),
		)
	}
	return nil
}

func (r *Repository) SaveVoter(ctx context.Context, profile entities.VoterProfile) error {
	row := voterModelFromEntity(profile)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"email":           row.Email,
			"phone_number":    row.PhoneNumber,
			"full_name":       row.FullName,
			"national_id":     row.NationalID,
			"date_of_birth":   row.DateOfBirth,
			"address":         row.Address,
			"email_verified":  row.EmailVerified,
			"phone_verified":  row.PhoneVerified,
			"id_verified":     row.IDVerified,
			"level":           row.Level,
			"voting_eligible": row.VotingEligible,
			"has_voted":       row.HasVoted,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrDuplicateNationalID
		}
		return r.logError("eligibility_repo_save_voter_failed", create.Error,
			"voter_id", strings.TrimSpace(profile.VoterID),
		)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, voterID string) (entities.VoterProfile, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterProfile{}, domainerrors.ErrVoterNotFound
		}
		return entities.VoterProfile{}, r.logError("eligibility_repo_get_voter_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindVoterByNationalID(ctx context.Context, nationalID string) (entities.VoterProfile, bool, error) {
	trimmed := strings.TrimSpace(nationalID)
	if trimmed == "" {
		return entities.VoterProfile{}, false, nil
	}
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("national_id = ?", trimmed).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterProfile{}, false, nil
		}
		return entities.VoterProfile{}, false, r.logError("eligibility_repo_find_national_id_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveSubmission(ctx context.Context, submission entities.IDDocumentSubmission) error {
	row := submissionModelFromEntity(submission)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":           row.Status,
			"reviewer_id":      row.ReviewerID,
			"rejection_reason": row.RejectionReason,
			"reviewed_at":      row.ReviewedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("eligibility_repo_save_submission_failed", create.Error,
			"submission_id", strings.TrimSpace(submission.SubmissionID),
			"voter_id", strings.TrimSpace(submission.VoterID),
		)
	}
	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.IDDocumentSubmission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.IDDocumentSubmission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.IDDocumentSubmission{}, r.logError("eligibility_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPendingSubmissionByVoter(ctx context.Context, voterID string) (entities.IDDocumentSubmission, bool, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("status = ?", string(entities.SubmissionStatusPending)).
		Order("submitted_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.IDDocumentSubmission{}, false, nil
		}
		return entities.IDDocumentSubmission{}, false, r.logError("eligibility_repo_get_pending_submission_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListSubmissionsByStatus(ctx context.Context, status entities.SubmissionStatus) ([]entities.IDDocumentSubmission, error) {
	tx := r.db.WithContext(ctx).Model(&submissionModel{})
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	var rows []submissionModel
	if err := tx.Order("submitted_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("eligibility_repo_list_submissions_failed", err,
			"status", string(status),
		)
	}
	items := make([]entities.IDDocumentSubmission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("eligibility_repo_append_outbox_marshal_failed", err,
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
		return r.logError("eligibility_repo_append_outbox_insert_failed", create.Error,
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
		return nil, r.logError("eligibility_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("eligibility_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("eligibility_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("eligibility_repo_reserve_event_load_existing_failed", err,
			"event_id", row.EventID,
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "election-core/eligibility-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("eligibility repository operation failed", fields...)
	return err
}

type voterModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Email          string     `gorm:"column:email"`
	PhoneNumber    string     `gorm:"column:phone_number"`
	FullName       string     `gorm:"column:full_name"`
	NationalID     *string    `gorm:"column:national_id;uniqueIndex"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth"`
	Address        string     `gorm:"column:address"`
	EmailVerified  bool       `gorm:"column:email_verified"`
	PhoneVerified  bool       `gorm:"column:phone_verified"`
	IDVerified     bool       `gorm:"column:id_verified"`
	Level          string     `gorm:"column:level"`
	VotingEligible bool       `gorm:"column:voting_eligible"`
	HasVoted       bool       `gorm:"column:has_voted"`
	RegisteredAt   time.Time  `gorm:"column:registered_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (voterModel) TableName() string {
	return "voters"
}

func voterModelFromEntity(profile entities.VoterProfile) voterModel {
	row := voterModel{
		ID:             strings.TrimSpace(profile.VoterID),
		Email:          strings.TrimSpace(profile.Email),
		PhoneNumber:    strings.TrimSpace(profile.PhoneNumber),
		FullName:       strings.TrimSpace(profile.FullName),
		DateOfBirth:    normalizeOptionalTime(profile.DateOfBirth),
		Address:        strings.TrimSpace(profile.Address),
		EmailVerified:  profile.EmailVerified,
		PhoneVerified:  profile.PhoneVerified,
		IDVerified:     profile.IDVerified,
		Level:          string(profile.Level),
		VotingEligible: profile.VotingEligible,
		HasVoted:       profile.HasVoted,
		RegisteredAt:   profile.RegisteredAt.UTC(),
		UpdatedAt:      profile.UpdatedAt.UTC(),
	}
	// NULL rather than empty string keeps the unique index on
	// national_id from colliding on voters without one.
	if nationalID := strings.TrimSpace(profile.NationalID); nationalID != "" {
		row.NationalID = &nationalID
	}
	if row.RegisteredAt.IsZero() {
		row.RegisteredAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.RegisteredAt
	}
	return row
}

func (m voterModel) toEntity() entities.VoterProfile {
	nationalID := ""
	if m.NationalID != nil {
		nationalID = strings.TrimSpace(*m.NationalID)
	}
	return entities.VoterProfile{
		VoterID:        m.ID,
		Email:          m.Email,
		PhoneNumber:    m.PhoneNumber,
		FullName:       m.FullName,
		NationalID:     nationalID,
		DateOfBirth:    normalizeOptionalTime(m.DateOfBirth),
		Address:        m.Address,
		EmailVerified:  m.EmailVerified,
		PhoneVerified:  m.PhoneVerified,
		IDVerified:     m.IDVerified,
		Level:          entities.VerificationLevel(m.Level),
		VotingEligible: m.VotingEligible,
		HasVoted:       m.HasVoted,
		RegisteredAt:   m.RegisteredAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type submissionModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	VoterID         string     `gorm:"column:voter_id"`
	NationalID      string     `gorm:"column:national_id"`
	IDType          string     `gorm:"column:id_type"`
	DocumentRef     string     `gorm:"column:document_ref"`
	Status          string     `gorm:"column:status"`
	ReviewerID      string     `gorm:"column:reviewer_id"`
	RejectionReason string     `gorm:"column:rejection_reason"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
}

func (submissionModel) TableName() string {
	return "id_document_submissions"
}

func submissionModelFromEntity(submission entities.IDDocumentSubmission) submissionModel {
	row := submissionModel{
		ID:              strings.TrimSpace(submission.SubmissionID),
		VoterID:         strings.TrimSpace(submission.VoterID),
		NationalID:      strings.TrimSpace(submission.NationalID),
		IDType:          string(submission.IDType),
		DocumentRef:     strings.TrimSpace(submission.DocumentRef),
		Status:          string(submission.Status),
		ReviewerID:      strings.TrimSpace(submission.ReviewerID),
		RejectionReason: strings.TrimSpace(submission.RejectionReason),
		SubmittedAt:     submission.SubmittedAt.UTC(),
		ReviewedAt:      normalizeOptionalTime(submission.ReviewedAt),
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	return row
}

func (m submissionModel) toEntity() entities.IDDocumentSubmission {
	return entities.IDDocumentSubmission{
		SubmissionID:    m.ID,
		VoterID:         m.VoterID,
		NationalID:      m.NationalID,
		IDType:          entities.IDDocumentType(m.IDType),
		DocumentRef:     m.DocumentRef,
		Status:          entities.SubmissionStatus(m.Status),
		ReviewerID:      m.ReviewerID,
		RejectionReason: m.RejectionReason,
		SubmittedAt:     m.SubmittedAt.UTC(),
		ReviewedAt:      normalizeOptionalTime(m.ReviewedAt),
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
	return "eligibility_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "eligibility_event_dedup"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoterRepository = (*Repository)(nil)
var _ ports.SubmissionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
