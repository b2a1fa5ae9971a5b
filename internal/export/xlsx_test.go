package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/eleco-media/amaike/internal/model"
)

func TestWriteTips(t *testing.T) {
	tips := []model.TipRecord{
		{
			ID:              "tip-1",
			CreatedAt:       time.Date(2025, 8, 20, 14, 30, 0, 0, time.UTC),
			OriginalMessage: "Vi un choque en el centro",
			Status:          model.TipStatusSubmitted,
			SubmissionID:    "tip_42",
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
		},
	}

	path := filepath.Join(t.TempDir(), "tips.xlsx")
	require.NoError(t, WriteTips(path, tips))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Tips", sheet.Name)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "tip-1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "2025-08-20T14:30:00Z", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "submitted", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "Un auto chocó contra un poste", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "accident", sheet.Rows[1].Cells[10].String())
}

func TestWriteTips_EmptyArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.xlsx")
	require.NoError(t, WriteTips(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1, "header only")
}
