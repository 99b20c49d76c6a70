package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docCols = []string{"id", "owner_id", "title", "file_name", "file_type", "size_bytes", "status", "created_at", "trashed_at", "permanently_deleted_at", "folder_id"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	folder := "f1"
	mock.ExpectExec(`(?s)^\s*INSERT INTO documents \(id, owner_id, title.*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11\)`).
		WithArgs("d1", "u1", "Report", "report.pdf", "application/pdf", int64(1024), "ACTIVE", now, sql.NullTime{}, sql.NullTime{}, sql.NullString{String: "f1", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Document{
		ID: "d1", OwnerID: "u1", Title: "Report", FileName: "report.pdf", FileType: "application/pdf",
		SizeBytes: 1024, Status: models.StatusActive, CreatedAt: now, FolderID: &folder,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO documents`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Document{ID: "d1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGet_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	trashed := created.Add(time.Hour)
	mock.ExpectQuery(`SELECT d\.id, .* FROM documents d WHERE d\.id = \$1`).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d1", "u1", "Report", "report.pdf", "application/pdf", int64(10), "TRASHED", created, trashed, nil, nil))

	got, err := repo.Get(context.Background(), "d1")
	require.NoError(t, err)

	want := &models.Document{
		ID: "d1", OwnerID: "u1", Title: "Report", FileName: "report.pdf", FileType: "application/pdf",
		SizeBytes: 10, Status: models.StatusTrashed, CreatedAt: created, TrashedAt: &trashed,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM documents d WHERE d\.id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateTitle_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE documents d SET title = \$2 WHERE d\.id = \$1 RETURNING`).
		WithArgs("d1", "New").
		WillReturnRows(sqlmock.NewRows(docCols))

	_, err := repo.UpdateTitle(context.Background(), "d1", "New")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransition_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	trashed := created.Add(time.Minute)
	mock.ExpectQuery(`UPDATE documents d SET status = \$3, trashed_at = \$4 WHERE d\.id = \$1 AND d\.status = \$2 RETURNING`).
		WithArgs("d1", "ACTIVE", "TRASHED", sql.NullTime{Time: trashed, Valid: true}).
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d1", "u1", "T", "t.txt", "", int64(1), "TRASHED", created, trashed, nil, nil))

	got, err := repo.Transition(context.Background(), "d1", models.StatusActive, models.StatusTrashed, &trashed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTrashed, got.Status)
	require.NotNil(t, got.TrashedAt)
	assert.True(t, trashed.Equal(*got.TrashedAt))
}

func TestTransition_NoMatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE documents d SET status`).
		WithArgs("d1", "TRASHED", "ACTIVE", sql.NullTime{}).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Transition(context.Background(), "d1", models.StatusTrashed, models.StatusActive, nil)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		result  driverResult
		execErr error
		wantErr error
		wantMsg string
	}{
		{name: "ok", result: driverResult{rows: 1}},
		{name: "missing", result: driverResult{rows: 0}, wantErr: common.ErrNotFound},
		{name: "db error", execErr: errors.New("boom"), wantMsg: "db error: boom"},
		{name: "rows affected error", result: driverResult{err: errors.New("rows-err")}, wantMsg: "rows affected error: rows-err"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`DELETE FROM documents WHERE id = \$1`).WithArgs("d1")
			switch {
			case tt.execErr != nil:
				exp.WillReturnError(tt.execErr)
			case tt.result.err != nil:
				exp.WillReturnResult(sqlmock.NewErrorResult(tt.result.err))
			default:
				exp.WillReturnResult(sqlmock.NewResult(0, tt.result.rows))
			}

			err := repo.Delete(context.Background(), "d1")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.EqualError(t, err, tt.wantMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

type driverResult struct {
	rows int64
	err  error
}

func TestFind_HomeQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	q := regexp.QuoteMeta(`FROM documents d WHERE d.owner_id = $1 AND d.status = $2 AND (d.title ILIKE $3 OR d.file_name ILIKE $3) ORDER BY d.title ASC, d.id ASC LIMIT $4 OFFSET $5`)
	mock.ExpectQuery(q).
		WithArgs("u1", "ACTIVE", `%50\%%`, 2, 4).
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("a", "u1", "50% off", "sale.pdf", "", int64(1), "ACTIVE", created, nil, nil, nil).
			AddRow("b", "u1", "50% on", "sale2.pdf", "", int64(2), "ACTIVE", created, nil, nil, nil))

	got, err := repo.Find(context.Background(), models.DocumentQuery{
		OwnerID: "u1", Status: models.StatusActive, Search: "50%",
		SortBy: models.DocumentSortTitle, SortDir: models.SortAsc, Limit: 2, Offset: 4,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFind_SharedAndExtensions(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`WHERE d.status = $1 AND (lower(d.file_name) LIKE $2 OR lower(d.file_name) LIKE $3) AND d.owner_id <> $4 AND EXISTS (SELECT 1 FROM permissions p WHERE p.document_id = d.id AND p.user_id = $4) ORDER BY d.created_at DESC, d.id ASC`)
	mock.ExpectQuery(q+`$`).
		WithArgs("ACTIVE", "%.jpg", "%.png", "u2").
		WillReturnRows(sqlmock.NewRows(docCols))

	got, err := repo.Find(context.Background(), models.DocumentQuery{
		Status: models.StatusActive, Extensions: []string{"JPG", "png"}, SharedWith: "u2",
		SortBy: "bogus",
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMove(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE documents d SET folder_id = \$2 WHERE d\.id = \$1 RETURNING`).
		WithArgs("d1", sql.NullString{String: "f1", Valid: true}).
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d1", "u1", "T", "t.txt", "", int64(1), "ACTIVE", created, nil, nil, "f1"))
	mock.ExpectQuery(`UPDATE documents d SET folder_id`).
		WithArgs("d1", sql.NullString{}).
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d1", "u1", "T", "t.txt", "", int64(1), "ACTIVE", created, nil, nil, nil))
	mock.ExpectQuery(`UPDATE documents d SET folder_id`).
		WithArgs("gone", sql.NullString{}).
		WillReturnError(sql.ErrNoRows)

	folder := "f1"
	got, err := repo.Move(context.Background(), "d1", &folder)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, "f1", *got.FolderID)

	got, err = repo.Move(context.Background(), "d1", nil)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	_, err = repo.Move(context.Background(), "gone", nil)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFind_FolderFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`WHERE d.owner_id = $1 AND d.folder_id = $2 ORDER BY d.created_at DESC, d.id ASC`)
	mock.ExpectQuery(q+`$`).
		WithArgs("u1", "f1").
		WillReturnRows(sqlmock.NewRows(docCols))

	got, err := repo.Find(context.Background(), models.DocumentQuery{OwnerID: "u1", FolderID: "f1"})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFind_QueryAndScanErrors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM documents d`).WillReturnError(errors.New("db err"))
	_, err := repo.Find(context.Background(), models.DocumentQuery{})
	require.Error(t, err)
	assert.Regexp(t, `failed to select documents: .*db err`, err.Error())

	mock.ExpectQuery(`FROM documents d`).
		WillReturnRows(sqlmock.NewRows(docCols).AddRow("d1", "u1", "t", "f", "", "not-int", "ACTIVE", time.Now(), nil, nil, nil))
	_, err = repo.Find(context.Background(), models.DocumentQuery{})
	require.Error(t, err)
}

func TestTotals(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(SUM(d.size_bytes), 0) FROM documents d WHERE d.owner_id = $1 AND d.status = $2`)).
		WithArgs("u1", "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(int64(3), int64(600)))

	count, bytes, err := repo.Totals(context.Background(), models.DocumentQuery{OwnerID: "u1", Status: models.StatusActive, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, int64(600), bytes)
}

func TestCountShared(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM documents d\s+WHERE d\.owner_id = \$1 AND d\.status = 'ACTIVE'\s+AND EXISTS`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := repo.CountShared(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBuildOrderBy(t *testing.T) {
	assert.Equal(t, "ORDER BY d.size_bytes DESC, d.id ASC", buildOrderBy(models.DocumentSortSize, models.SortDesc))
	assert.Equal(t, "ORDER BY d.trashed_at ASC, d.id ASC", buildOrderBy(models.DocumentSortTrashedAt, models.SortAsc))
	assert.Equal(t, "ORDER BY d.created_at DESC, d.id ASC", buildOrderBy("size; DROP TABLE documents", ""))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
}
