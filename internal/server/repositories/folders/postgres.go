package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

const columns = `id, owner_id, name, parent_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(s scanner) (*models.Folder, error) {
	var (
		f      models.Folder
		parent sql.NullString
	)
	if err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &parent, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.String
		f.ParentID = &p
	}
	return &f, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.Folder) error {
	query := `
		INSERT INTO folders (id, owner_id, name, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, f.ID, f.OwnerID, f.Name, nullString(f.ParentID), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	f, err := scanFolder(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM folders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, f *models.Folder) (*models.Folder, error) {
	query := `UPDATE folders SET name = $2, parent_id = $3, updated_at = $4 WHERE id = $1 RETURNING ` + columns

	updated, err := scanFolder(r.db.QueryRowContext(ctx, query, f.ID, f.Name, nullString(f.ParentID), f.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID, parentID string) ([]*models.Folder, error) {
	query := `SELECT ` + columns + ` FROM folders WHERE owner_id = $1`
	args := []any{ownerID}
	if parentID != "" {
		query += ` AND parent_id = $2`
		args = append(args, parentID)
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountContents(ctx context.Context, id string) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM folders WHERE parent_id = $1),
			(SELECT COUNT(*) FROM documents WHERE folder_id = $1)`

	var folders, documents int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&folders, &documents); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return folders, documents, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
