package sharelinks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

const columns = `document_id, link_id, access_level, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanLink(row *sql.Row) (*models.ShareLink, error) {
	var (
		l     models.ShareLink
		level string
	)
	err := row.Scan(&l.DocumentID, &l.LinkID, &level, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	l.AccessLevel = models.AccessLevel(level)
	return &l, nil
}

func (r *PostgresRepository) GetByDocument(ctx context.Context, documentID string) (*models.ShareLink, error) {
	return scanLink(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM share_links WHERE document_id = $1`, documentID))
}

func (r *PostgresRepository) GetByLinkID(ctx context.Context, linkID string) (*models.ShareLink, error) {
	return scanLink(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM share_links WHERE link_id = $1`, linkID))
}

func (r *PostgresRepository) Upsert(ctx context.Context, link *models.ShareLink) (*models.ShareLink, error) {
	query := `
		INSERT INTO share_links (document_id, link_id, access_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id)
		DO UPDATE SET access_level = EXCLUDED.access_level, updated_at = EXCLUDED.updated_at
		RETURNING ` + columns

	return scanLink(r.db.QueryRowContext(ctx, query,
		link.DocumentID, link.LinkID, string(link.AccessLevel), link.CreatedAt, link.UpdatedAt))
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
