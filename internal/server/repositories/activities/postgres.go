package activities

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activities (id, document_id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query, a.ID, a.DocumentID, a.UserID, string(a.Action), a.Details, a.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Activity, error) {
	query := `
		SELECT id, document_id, user_id, action, details, created_at FROM activities
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select activities: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Activity, 0)
	for rows.Next() {
		var (
			a      models.Activity
			action string
		)
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.UserID, &action, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Action = models.ActivityAction(action)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
