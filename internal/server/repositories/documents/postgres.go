package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

const columns = `d.id, d.owner_id, d.title, d.file_name, d.file_type, d.size_bytes, d.status, d.created_at, d.trashed_at, d.permanently_deleted_at, d.folder_id`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var (
		d         models.Document
		status    string
		trashedAt sql.NullTime
		deletedAt sql.NullTime
		folderID  sql.NullString
	)
	err := s.Scan(&d.ID, &d.OwnerID, &d.Title, &d.FileName, &d.FileType, &d.SizeBytes, &status, &d.CreatedAt, &trashedAt, &deletedAt, &folderID)
	if err != nil {
		return nil, err
	}
	d.Status = models.DocumentStatus(status)
	if trashedAt.Valid {
		t := trashedAt.Time
		d.TrashedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		d.PermanentlyDeletedAt = &t
	}
	if folderID.Valid {
		f := folderID.String
		d.FolderID = &f
	}
	return &d, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, title, file_name, file_type, size_bytes, status, created_at, trashed_at, permanently_deleted_at, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query, doc.ID, doc.OwnerID, doc.Title, doc.FileName, doc.FileType, doc.SizeBytes,
		string(doc.Status), doc.CreatedAt, nullTime(doc.TrashedAt), nullTime(doc.PermanentlyDeletedAt), nullString(doc.FolderID))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + columns + ` FROM documents d WHERE d.id = $1`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id, title string) (*models.Document, error) {
	query := `UPDATE documents d SET title = $2 WHERE d.id = $1 RETURNING ` + columns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Move(ctx context.Context, id string, folderID *string) (*models.Document, error) {
	query := `UPDATE documents d SET folder_id = $2 WHERE d.id = $1 RETURNING ` + columns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, nullString(folderID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Transition(ctx context.Context, id string, from, to models.DocumentStatus, trashedAt *time.Time) (*models.Document, error) {
	query := `UPDATE documents d SET status = $3, trashed_at = $4 WHERE d.id = $1 AND d.status = $2 RETURNING ` + columns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, string(from), string(to), nullTime(trashedAt)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
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

func (r *PostgresRepository) Find(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	where, args := buildWhere(q)
	query := `SELECT ` + columns + ` FROM documents d ` + where + ` ` + buildOrderBy(q.SortBy, q.SortDir)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Totals(ctx context.Context, q models.DocumentQuery) (int64, int64, error) {
	where, args := buildWhere(q)
	query := `SELECT COUNT(*), COALESCE(SUM(d.size_bytes), 0) FROM documents d ` + where

	var count, bytes int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count, &bytes); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return count, bytes, nil
}

func (r *PostgresRepository) CountShared(ctx context.Context, ownerID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM documents d
		WHERE d.owner_id = $1 AND d.status = 'ACTIVE'
		AND EXISTS (SELECT 1 FROM permissions p WHERE p.document_id = d.id)`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildWhere turns the query filters into a WHERE clause with positional
// arguments.
func buildWhere(q models.DocumentQuery) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if q.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("d.owner_id = $%d", next(q.OwnerID)))
	}
	if q.Status != "" {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", next(string(q.Status))))
	}
	if q.Search != "" {
		n := next("%" + EscapeLike(q.Search) + "%")
		conditions = append(conditions, fmt.Sprintf("(d.title ILIKE $%d OR d.file_name ILIKE $%d)", n, n))
	}
	if q.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("d.created_at >= $%d", next(*q.CreatedAfter)))
	}
	if q.TrashedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("d.trashed_at < $%d", next(*q.TrashedBefore)))
	}
	if len(q.Extensions) > 0 {
		ors := make([]string, 0, len(q.Extensions))
		for _, ext := range q.Extensions {
			ors = append(ors, fmt.Sprintf("lower(d.file_name) LIKE $%d", next("%."+EscapeLike(strings.ToLower(ext)))))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}
	if q.FolderID != "" {
		conditions = append(conditions, fmt.Sprintf("d.folder_id = $%d", next(q.FolderID)))
	}
	if q.SharedWith != "" {
		n := next(q.SharedWith)
		conditions = append(conditions, fmt.Sprintf(
			"d.owner_id <> $%d AND EXISTS (SELECT 1 FROM permissions p WHERE p.document_id = d.id AND p.user_id = $%d)", n, n))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// sortColumns whitelists the sortable columns.
var sortColumns = map[models.DocumentSort]string{
	models.DocumentSortTitle:     "d.title",
	models.DocumentSortSize:      "d.size_bytes",
	models.DocumentSortCreatedAt: "d.created_at",
	models.DocumentSortTrashedAt: "d.trashed_at",
}

func buildOrderBy(sortBy models.DocumentSort, dir models.SortDir) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[models.DocumentSortCreatedAt]
	}
	direction := "DESC"
	if dir == models.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, d.id ASC", column, direction)
}
