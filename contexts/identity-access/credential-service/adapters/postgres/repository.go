package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"electra/contexts/identity-access/credential-service/domain/entities"
	domainerrors "electra/contexts/identity-access/credential-service/domain/errors"
	"electra/contexts/identity-access/credential-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

func (r *Repository) CreateCredential(ctx context.Context, credential entities.Credential) error {
	row := credentialModelFromEntity(credential)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrEmailTaken
		}
		return r.logError("credential_repo_create_failed", err,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (r *Repository) GetCredentialByEmail(ctx context.Context, email string) (entities.Credential, error) {
	var row credentialModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Credential{}, domainerrors.ErrCredentialNotFound
		}
		return entities.Credential{}, r.logError("credential_repo_get_by_email_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "identity-access/credential-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("credential repository operation failed", fields...)
	return err
}

type credentialModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	VoterID      string    `gorm:"column:voter_id"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (credentialModel) TableName() string {
	return "voter_credentials"
}

func credentialModelFromEntity(credential entities.Credential) credentialModel {
	row := credentialModel{
		ID:           strings.TrimSpace(credential.CredentialID),
		VoterID:      strings.TrimSpace(credential.VoterID),
		Email:        strings.ToLower(strings.TrimSpace(credential.Email)),
		PasswordHash: credential.PasswordHash,
		CreatedAt:    credential.CreatedAt.UTC(),
		UpdatedAt:    credential.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m credentialModel) toEntity() entities.Credential {
	return entities.Credential{
		CredentialID: m.ID,
		VoterID:      m.VoterID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.CredentialRepository = (*Repository)(nil)
