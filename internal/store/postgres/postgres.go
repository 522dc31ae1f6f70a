// Package postgres stores projects, their version history and changelog
// rows in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const connectTimeout = 10 * time.Second

// PostgresStore is the store.Store used by the server.
type PostgresStore struct {
	conn
	db *sql.DB
}

var (
	_ store.Store = (*PostgresStore)(nil)
	_ store.Store = (*txStore)(nil)
)

// New connects to databaseURL and applies pending schema migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return newStore(db), nil
}

func newStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{conn: conn{db}, db: db}
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	target, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunInTransaction runs fn against a store bound to one transaction,
// committing when fn returns nil.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&txStore{conn{tx}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore is the store handed to RunInTransaction callbacks.
type txStore struct {
	conn
}

// RunInTransaction joins the surrounding transaction.
func (s *txStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}

// conn carries the query methods shared by the pooled and the
// transactional store.
type conn struct {
	ex executor
}

func (c conn) CreateProject(ctx context.Context, p *model.Project) error {
	return queryCreateProject(ctx, c.ex, p)
}

func (c conn) GetProject(ctx context.Context, name string) (*model.Project, error) {
	return queryGetProject(ctx, c.ex, name)
}

func (c conn) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return queryListProjects(ctx, c.ex)
}

func (c conn) AddVersion(ctx context.Context, project, version string) error {
	return queryAddVersion(ctx, c.ex, project, version)
}

func (c conn) ListVersions(ctx context.Context, project string) ([]string, error) {
	return queryListVersions(ctx, c.ex, project)
}

func (c conn) PutStructure(ctx context.Context, project, version string, row *model.StructureRow) error {
	return queryPutStructure(ctx, c.ex, project, version, row)
}

func (c conn) PutDependency(ctx context.Context, project, version string, row *model.DependencyRow) error {
	return queryPutDependency(ctx, c.ex, project, version, row)
}

func (c conn) ListChangedStructure(ctx context.Context, project, version string) ([]*model.StructureRow, error) {
	return queryListChangedStructure(ctx, c.ex, project, version)
}

func (c conn) ListChangedDependencies(ctx context.Context, project, version string) ([]*model.DependencyRow, error) {
	return queryListChangedDependencies(ctx, c.ex, project, version)
}

func (c conn) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, c.ex, event)
}

func (c conn) ListEvents(ctx context.Context, project string, limit int) ([]*model.Event, error) {
	return queryListEvents(ctx, c.ex, project, limit)
}
