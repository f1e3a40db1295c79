package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/storage"
)

// Storage is a Postgres-backed implementation of the store interface.
// The invariant-bearing operations run inside transactions and take
// row locks, so correctness does not depend on any in-process
// synchronization and multiple server instances can share a database.
type Storage struct {
	db *bun.DB
}

// New creates a new Postgres storage instance
func New(cfg Config) (*Storage, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := bun.NewDB(sqldb, pgdialect.New())

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a Postgres storage with an existing bun.DB (for testing)
func NewWithDB(db *bun.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// InitSchema creates all required tables and indexes
func (s *Storage) InitSchema(ctx context.Context) error {
	type tableSpec struct {
		model       any
		foreignKeys []string
	}

	tables := []tableSpec{
		{model: (*model.User)(nil)},
		{model: (*model.Run)(nil)},
		{
			model:       (*model.RunCounter)(nil),
			foreignKeys: []string{`("run_id") REFERENCES "runs" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*model.Flag)(nil),
			foreignKeys: []string{`("run_id") REFERENCES "runs" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*model.Question)(nil),
			foreignKeys: []string{`("run_id") REFERENCES "runs" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*model.QuestionOption)(nil),
			foreignKeys: []string{`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*model.History)(nil),
			foreignKeys: []string{`("run_id") REFERENCES "runs" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*model.HistoryFlag)(nil),
			foreignKeys: []string{`("history_id") REFERENCES "histories" ("id") ON DELETE CASCADE`},
		},
	}

	for _, t := range tables {
		query := s.db.NewCreateTable().
			Model(t.model).
			IfNotExists()
		for _, fk := range t.foreignKeys {
			query = query.ForeignKey(fk)
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []string{
		// Dense per-run numbering; the database is the final arbiter
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_flags_run_number ON flags(run_id, flag_number);",
		// At most one active attempt per (actor, run); backstop for the
		// lock taken in StartHistory
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_histories_active ON histories(actor_id, run_id) WHERE ended_at IS NULL;",
		"CREATE INDEX IF NOT EXISTS idx_flags_run_id ON flags(run_id);",
		"CREATE INDEX IF NOT EXISTS idx_questions_run_id ON questions(run_id);",
		"CREATE INDEX IF NOT EXISTS idx_question_options_question_id ON question_options(question_id);",
		"CREATE INDEX IF NOT EXISTS idx_histories_actor_id ON histories(actor_id);",
		"CREATE INDEX IF NOT EXISTS idx_history_flags_history_id ON history_flags(history_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_history_flags_history_flag ON history_flags(history_id, flag_id);",
	}

	for _, idx := range indexes {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a Postgres unique
// constraint violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
