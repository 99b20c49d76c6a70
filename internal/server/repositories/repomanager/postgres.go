package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/dbx"
	"github.com/dmitrijs2005/gophdocs/internal/server/migrations"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/activities"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/documents"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/settings"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// postgresRepos binds every repository to one DBTX.
type postgresRepos struct {
	db dbx.DBTX
}

func (r postgresRepos) Documents() documents.Repository {
	return documents.NewPostgresRepository(r.db)
}

func (r postgresRepos) Folders() folders.Repository {
	return folders.NewPostgresRepository(r.db)
}

func (r postgresRepos) Permissions() permissions.Repository {
	return permissions.NewPostgresRepository(r.db)
}

func (r postgresRepos) ShareLinks() sharelinks.Repository {
	return sharelinks.NewPostgresRepository(r.db)
}

func (r postgresRepos) Users() users.Repository {
	return users.NewPostgresRepository(r.db)
}

func (r postgresRepos) Settings() settings.Repository {
	return settings.NewPostgresRepository(r.db)
}

func (r postgresRepos) Activities() activities.Repository {
	return activities.NewPostgresRepository(r.db)
}

// PostgresRepositoryManager vends PostgreSQL-backed repositories and exposes
// the schema migration hook.
type PostgresRepositoryManager struct {
	postgresRepos
	db *sql.DB
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// OpenPostgres opens a pgx-backed *sql.DB for dsn.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{postgresRepos: postgresRepos{db: db}, db: db}
}

func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, postgresRepos{db: tx})
	})
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}
