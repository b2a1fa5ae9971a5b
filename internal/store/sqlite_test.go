package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleco-media/amaike/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleTip() *model.TipRecord {
	return &model.TipRecord{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
		OriginalMessage: "Vi un choque en el centro",
		Fields: model.TipFields{
			What:              "Un auto chocó contra un poste",
			When:              "ayer a la tarde",
			Where:             "Av. Rivadavia y Belgrano",
			Who:               "un vecino",
			How:               "Información no especificada",
			AdditionalDetails: "Un auto chocó contra un poste ayer a la tarde",
			Urgency:           model.UrgencyMedium,
			Category:          model.CategoryAccident,
		},
		Status: model.TipStatusReadyToSubmit,
	}
}

func TestSQLite_SaveAndGetTip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tip := sampleTip()

	require.NoError(t, s.SaveTip(ctx, tip))

	got, err := s.GetTip(ctx, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, tip.ID, got.ID)
	assert.Equal(t, tip.OriginalMessage, got.OriginalMessage)
	assert.Equal(t, tip.Fields, got.Fields)
	assert.Equal(t, model.TipStatusReadyToSubmit, got.Status)
	assert.Empty(t, got.SubmissionID)
}

func TestSQLite_GetTip_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTip(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrTipNotFound))
}

func TestSQLite_UpdateTipStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tip := sampleTip()
	require.NoError(t, s.SaveTip(ctx, tip))

	require.NoError(t, s.UpdateTipStatus(ctx, tip.ID, model.TipStatusSubmitted, "tip_42"))

	got, err := s.GetTip(ctx, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusSubmitted, got.Status)
	assert.Equal(t, "tip_42", got.SubmissionID)
}

func TestSQLite_UpdateTipStatus_TerminalIsImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tip := sampleTip()
	require.NoError(t, s.SaveTip(ctx, tip))
	require.NoError(t, s.UpdateTipStatus(ctx, tip.ID, model.TipStatusFailed, ""))

	err := s.UpdateTipStatus(ctx, tip.ID, model.TipStatusSubmitted, "tip_43")
	assert.True(t, eris.Is(err, ErrTipTerminal))

	got, err := s.GetTip(ctx, tip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusFailed, got.Status)
	assert.Empty(t, got.SubmissionID)
}

func TestSQLite_UpdateTipStatus_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateTipStatus(context.Background(), "missing", model.TipStatusSubmitted, "x")
	assert.True(t, eris.Is(err, ErrTipNotFound))
}

func TestSQLite_ListTips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleTip()
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	second := sampleTip()
	second.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	require.NoError(t, s.SaveTip(ctx, first))
	require.NoError(t, s.SaveTip(ctx, second))
	require.NoError(t, s.UpdateTipStatus(ctx, first.ID, model.TipStatusSubmitted, "tip_1"))

	all, err := s.ListTips(ctx, TipFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	submitted, err := s.ListTips(ctx, TipFilter{Status: model.TipStatusSubmitted})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, first.ID, submitted[0].ID)

	limited, err := s.ListTips(ctx, TipFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_LogUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.LogUsage(ctx, model.UsageEntry{
		SessionID:       uuid.NewString(),
		Query:           "¿Cuándo juega Santamarina?",
		ResponseLength:  240,
		SourcesFound:    2,
		HasCallToAction: false,
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_log`).Scan(&count))
	assert.Equal(t, 1, count)
}
