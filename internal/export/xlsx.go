// Package export writes tip archives to spreadsheet files for the newsroom.
package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/eleco-media/amaike/internal/model"
)

var tipHeader = []string{
	"ID", "Fecha", "Estado", "ID de envío", "Qué pasó", "Cuándo", "Dónde",
	"Quién", "Cómo", "Urgencia", "Categoría", "Detalles adicionales", "Mensaje original",
}

// WriteTips saves the given tips as one XLSX sheet at path.
func WriteTips(path string, tips []model.TipRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Tips")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range tipHeader {
		header.AddCell().SetString(col)
	}

	for _, tip := range tips {
		row := sheet.AddRow()
		for _, val := range []string{
			tip.ID,
			tip.CreatedAt.UTC().Format(time.RFC3339),
			string(tip.Status),
			tip.SubmissionID,
			tip.Fields.What,
			tip.Fields.When,
			tip.Fields.Where,
			tip.Fields.Who,
			tip.Fields.How,
			string(tip.Fields.Urgency),
			string(tip.Fields.Category),
			tip.Fields.AdditionalDetails,
			tip.OriginalMessage,
		} {
			row.AddCell().SetString(val)
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}
