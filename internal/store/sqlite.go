package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/eleco-media/amaike/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tips (
	id               TEXT PRIMARY KEY,
	original_message TEXT NOT NULL,
	fields           TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'ready_to_submit',
	submission_id    TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS usage_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id      TEXT NOT NULL,
	query           TEXT NOT NULL,
	response_length INTEGER NOT NULL,
	sources_found   INTEGER NOT NULL,
	call_to_action  INTEGER NOT NULL DEFAULT 0,
	logged_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tips_status ON tips(status);
CREATE INDEX IF NOT EXISTS idx_tips_created_at ON tips(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_log_session ON usage_log(session_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTip(ctx context.Context, tip *model.TipRecord) error {
	fieldsJSON, err := json.Marshal(tip.Fields)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal fields")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tips (id, original_message, fields, status, submission_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tip.ID, tip.OriginalMessage, string(fieldsJSON), string(tip.Status),
		nullable(tip.SubmissionID), tip.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert tip %s", tip.ID)
}

func (s *SQLiteStore) UpdateTipStatus(ctx context.Context, tipID string, status model.TipStatus, submissionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tips SET status = ?, submission_id = ?, updated_at = ?
		 WHERE id = ? AND status NOT IN ('submitted', 'failed')`,
		string(status), nullable(submissionID), time.Now().UTC(), tipID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update tip %s", tipID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		// either the id does not exist or the record is immutable
		if _, err := s.GetTip(ctx, tipID); err != nil {
			return err
		}
		return ErrTipTerminal
	}
	return nil
}

func (s *SQLiteStore) GetTip(ctx context.Context, tipID string) (*model.TipRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, original_message, fields, status, submission_id, created_at FROM tips WHERE id = ?`,
		tipID,
	)
	return scanTip(row)
}

func (s *SQLiteStore) ListTips(ctx context.Context, filter TipFilter) ([]model.TipRecord, error) {
	query := `SELECT id, original_message, fields, status, submission_id, created_at FROM tips WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tips")
	}
	defer rows.Close()

	var tips []model.TipRecord
	for rows.Next() {
		t, err := scanTip(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, *t)
	}
	return tips, eris.Wrap(rows.Err(), "sqlite: list tips iterate")
}

func (s *SQLiteStore) LogUsage(ctx context.Context, entry model.UsageEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log (session_id, query, response_length, sources_found, call_to_action, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.Query, entry.ResponseLength, entry.SourcesFound,
		entry.HasCallToAction, ts.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert usage entry")
}

// helpers

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTip(row scannable) (*model.TipRecord, error) {
	var t model.TipRecord
	var fieldsJSON string
	var submissionID sql.NullString

	err := row.Scan(&t.ID, &t.OriginalMessage, &fieldsJSON, &t.Status, &submissionID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTipNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan tip")
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &t.Fields); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal fields")
	}
	if submissionID.Valid {
		t.SubmissionID = submissionID.String
	}
	return &t, nil
}
