package permissions

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

type scanner interface {
	Scan(dest ...any) error
}

func scanPermission(s scanner) (*models.Permission, error) {
	var (
		p     models.Permission
		level string
	)
	if err := s.Scan(&p.DocumentID, &p.UserID, &level, &p.GrantedAt); err != nil {
		return nil, err
	}
	p.Level = models.AccessLevel(level)
	return &p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Permission) (*models.Permission, error) {
	query := `
		INSERT INTO permissions (document_id, user_id, level, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, user_id)
		DO UPDATE SET level = EXCLUDED.level
		RETURNING document_id, user_id, level, granted_at`

	out, err := scanPermission(r.db.QueryRowContext(ctx, query, p.DocumentID, p.UserID, string(p.Level), p.GrantedAt))
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateLevel(ctx context.Context, documentID, userID string, level models.AccessLevel) (*models.Permission, error) {
	query := `
		UPDATE permissions SET level = $3
		WHERE document_id = $1 AND user_id = $2
		RETURNING document_id, user_id, level, granted_at`

	out, err := scanPermission(r.db.QueryRowContext(ctx, query, documentID, userID, string(level)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, documentID, userID string) (*models.Permission, error) {
	query := `SELECT document_id, user_id, level, granted_at FROM permissions WHERE document_id = $1 AND user_id = $2`

	out, err := scanPermission(r.db.QueryRowContext(ctx, query, documentID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, documentID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE document_id = $1 AND user_id = $2`, documentID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.Permission, error) {
	query := `
		SELECT document_id, user_id, level, granted_at FROM permissions
		WHERE document_id = $1
		ORDER BY granted_at ASC, user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select permissions: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Permission, 0)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
