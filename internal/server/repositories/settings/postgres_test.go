package settings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)SELECT quota_bytes, trash_retention_days.*FROM settings WHERE id = 1`
	mock.ExpectQuery(q).WillReturnRows(
		sqlmock.NewRows([]string{"quota_bytes", "trash_retention_days", "require_email_verification", "enable_two_factor_auth", "updated_at"}).
			AddRow(int64(1000), 14, true, false, t0))
	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.Settings{QuotaBytes: 1000, TrashRetentionDays: 14, RequireEmailVerification: true, UpdatedAt: t0}, got)

	_, err = repo.Get(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSave(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q := `(?s)INSERT INTO settings \(id, quota_bytes.*VALUES \(1, \$1, \$2, \$3, \$4, \$5\)\s+ON CONFLICT \(id\)`
	mock.ExpectExec(q).WithArgs(int64(500), 3, false, true, t0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WillReturnError(errors.New("read only"))

	s := &models.Settings{QuotaBytes: 500, TrashRetentionDays: 3, EnableTwoFactorAuth: true, UpdatedAt: t0}
	require.NoError(t, repo.Save(context.Background(), s))
	require.EqualError(t, repo.Save(context.Background(), s), "db error: read only")
}
