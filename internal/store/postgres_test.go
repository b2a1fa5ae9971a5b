package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleco-media/amaike/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_SaveTip(t *testing.T) {
	s, mock := newMockStore(t)
	tip := sampleTip()

	mock.ExpectExec(`INSERT INTO tips`).
		WithArgs(tip.ID, tip.OriginalMessage, pgxmock.AnyArg(), "ready_to_submit",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveTip(context.Background(), tip))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateTipStatus_TerminalIsImmutable(t *testing.T) {
	s, mock := newMockStore(t)
	tip := sampleTip()
	tip.Status = model.TipStatusSubmitted

	// no rows updated, then the existence probe finds a terminal record
	mock.ExpectExec(`UPDATE tips SET status`).
		WithArgs("submitted", pgxmock.AnyArg(), pgxmock.AnyArg(), tip.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT id, original_message, fields, status, submission_id, created_at FROM tips`).
		WithArgs(tip.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "original_message", "fields", "status", "submission_id", "created_at"}).
			AddRow(tip.ID, tip.OriginalMessage, `{"what":"x"}`, "submitted", nil, tip.CreatedAt))

	err := s.UpdateTipStatus(context.Background(), tip.ID, model.TipStatusSubmitted, "tip_99")
	assert.True(t, eris.Is(err, ErrTipTerminal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListTips_StatusFilter(t *testing.T) {
	s, mock := newMockStore(t)
	tip := sampleTip()

	mock.ExpectQuery(`SELECT id, original_message, fields, status, submission_id, created_at FROM tips`).
		WithArgs("ready_to_submit", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "original_message", "fields", "status", "submission_id", "created_at"}).
			AddRow(tip.ID, tip.OriginalMessage, `{"what":"Un auto chocó contra un poste"}`, "ready_to_submit", nil, tip.CreatedAt))

	got, err := s.ListTips(context.Background(), TipFilter{Status: model.TipStatusReadyToSubmit})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Un auto chocó contra un poste", got[0].Fields.What)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LogUsage(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO usage_log`).
		WithArgs("session-1", "¿Cuándo juega Santamarina?", 240, 2, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.LogUsage(context.Background(), model.UsageEntry{
		SessionID:       "session-1",
		Query:           "¿Cuándo juega Santamarina?",
		ResponseLength:  240,
		SourcesFound:    2,
		HasCallToAction: false,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
