package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT quota_bytes, trash_retention_days, require_email_verification, enable_two_factor_auth, updated_at
		FROM settings WHERE id = 1`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, query).
		Scan(&s.QuotaBytes, &s.TrashRetentionDays, &s.RequireEmailVerification, &s.EnableTwoFactorAuth, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (id, quota_bytes, trash_retention_days, require_email_verification, enable_two_factor_auth, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			quota_bytes = EXCLUDED.quota_bytes,
			trash_retention_days = EXCLUDED.trash_retention_days,
			require_email_verification = EXCLUDED.require_email_verification,
			enable_two_factor_auth = EXCLUDED.enable_two_factor_auth,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, s.QuotaBytes, s.TrashRetentionDays, s.RequireEmailVerification, s.EnableTwoFactorAuth, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
