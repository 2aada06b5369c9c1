package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/model"
	"github.com/johncui/rapport/pkg/store/graph"
)

// Config controls SQLite initialization.
type Config struct {
	Path   string
	Logger *zap.Logger
}

// Database wraps the sql.DB handle. It allows a single open connection, so
// units of work run one at a time.
type Database struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens the database and ensures schema.
func New(ctx context.Context, cfg Config) (*Database, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	wrapper := &Database{db: db, logger: cfg.Logger}
	if err := wrapper.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	cfg.Logger.Info("sqlite database ready", zap.String("path", cfg.Path))
	return wrapper, nil
}

func (d *Database) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS people (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id TEXT NOT NULL,
            name TEXT NOT NULL,
            relationship_type TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            date_added DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_people_owner ON people(owner_id);`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id TEXT NOT NULL,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            content_with_highlights TEXT NOT NULL DEFAULT '',
            date_created DATETIME NOT NULL,
            mood TEXT NOT NULL DEFAULT '',
            sentiment_score REAL NOT NULL DEFAULT 0,
            interaction_type TEXT NOT NULL DEFAULT '',
            extracted_names TEXT NOT NULL DEFAULT '[]'
        );`,
		`CREATE INDEX IF NOT EXISTS idx_entries_owner ON journal_entries(owner_id, date_created);`,
		`CREATE TABLE IF NOT EXISTS journal_people (
            entry_id INTEGER NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
            person_id INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            PRIMARY KEY (entry_id, person_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_journal_people_person ON journal_people(person_id);`,
		`CREATE TABLE IF NOT EXISTS person_connections (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id TEXT NOT NULL,
            source_id INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
            target_id INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
            relationship_type TEXT NOT NULL DEFAULT '',
            closeness INTEGER NOT NULL DEFAULT 1,
            sentiment REAL NOT NULL DEFAULT 0,
            notes TEXT NOT NULL DEFAULT '',
            last_updated DATETIME NOT NULL,
            interaction_count INTEGER NOT NULL DEFAULT 0,
            mention_count INTEGER NOT NULL DEFAULT 0,
            CHECK (source_id <> target_id)
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_connection_pair
            ON person_connections(owner_id, min(source_id, target_id), max(source_id, target_id));`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Within runs fn inside one transaction and commits when fn returns nil.
func (d *Database) Within(ctx context.Context, fn func(ctx context.Context, s model.Stores) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stores := model.Stores{
		People:        &peopleStore{q: tx},
		Entries:       &entryStore{q: tx, logger: d.logger},
		Relationships: graph.New(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DB returns the underlying database handle.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close releases the database.
func (d *Database) Close() error {
	return d.db.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, '?')
		if i != n-1 {
			out = append(out, ',')
		}
	}
	return string(out)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

var _ model.UnitOfWork = (*Database)(nil)
