package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/eleco-media/amaike/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    pgxPool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS tips (
	id               TEXT PRIMARY KEY,
	original_message TEXT NOT NULL,
	fields           JSONB NOT NULL,
	status           TEXT NOT NULL DEFAULT 'ready_to_submit',
	submission_id    TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS usage_log (
	id              BIGSERIAL PRIMARY KEY,
	session_id      TEXT NOT NULL,
	query           TEXT NOT NULL,
	response_length INTEGER NOT NULL,
	sources_found   INTEGER NOT NULL,
	call_to_action  BOOLEAN NOT NULL DEFAULT false,
	logged_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tips_status ON tips(status);
CREATE INDEX IF NOT EXISTS idx_tips_created_at ON tips(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_log_session ON usage_log(session_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveTip(ctx context.Context, tip *model.TipRecord) error {
	fieldsJSON, err := json.Marshal(tip.Fields)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal fields")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tips (id, original_message, fields, status, submission_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tip.ID, tip.OriginalMessage, string(fieldsJSON), string(tip.Status),
		nullable(tip.SubmissionID), tip.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert tip %s", tip.ID)
}

func (s *PostgresStore) UpdateTipStatus(ctx context.Context, tipID string, status model.TipStatus, submissionID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tips SET status = $1, submission_id = $2, updated_at = $3
		 WHERE id = $4 AND status NOT IN ('submitted', 'failed')`,
		string(status), nullable(submissionID), time.Now().UTC(), tipID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update tip %s", tipID)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetTip(ctx, tipID); err != nil {
			return err
		}
		return ErrTipTerminal
	}
	return nil
}

func (s *PostgresStore) GetTip(ctx context.Context, tipID string) (*model.TipRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, original_message, fields, status, submission_id, created_at FROM tips WHERE id = $1`,
		tipID,
	)
	return scanTipPgx(row)
}

func (s *PostgresStore) ListTips(ctx context.Context, filter TipFilter) ([]model.TipRecord, error) {
	query := `SELECT id, original_message, fields, status, submission_id, created_at FROM tips WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tips")
	}
	defer rows.Close()

	var tips []model.TipRecord
	for rows.Next() {
		t, err := scanTipPgx(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, *t)
	}
	return tips, eris.Wrap(rows.Err(), "postgres: list tips iterate")
}

func (s *PostgresStore) LogUsage(ctx context.Context, entry model.UsageEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_log (session_id, query, response_length, sources_found, call_to_action, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.SessionID, entry.Query, entry.ResponseLength, entry.SourcesFound,
		entry.HasCallToAction, ts.UTC(),
	)
	return eris.Wrap(err, "postgres: insert usage entry")
}

func scanTipPgx(row scannable) (*model.TipRecord, error) {
	var t model.TipRecord
	var fieldsJSON string
	var submissionID sql.NullString

	err := row.Scan(&t.ID, &t.OriginalMessage, &fieldsJSON, &t.Status, &submissionID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTipNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan tip")
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &t.Fields); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal fields")
	}
	if submissionID.Valid {
		t.SubmissionID = submissionID.String
	}
	return &t, nil
}
