// Package export writes batch results into a spreadsheet for the training
// admins, who review sessions in bulk outside the web panel.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/stephaneavril/leo-medico/internal/worker"
)

const sheetName = "Sesiones"

var headers = []string{
	"Transcripción", "Score (0-14)", "Riesgo", "Fases aplicadas %",
	"Índice checklist (0-10)", "Cobertura de mensajes", "Escucha activa",
	"Cierre presente", "Frases descalificantes", "Confianza", "Nivel", "Error",
}

// WriteWorkbook writes one row per batch result.
func WriteWorkbook(results []*worker.EvalResult, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, res := range results {
		row := i + 2
		values := rowValues(res)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("cell %d/%d: %w", row, col, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func rowValues(res *worker.EvalResult) []interface{} {
	name := filepath.Base(res.Path)
	if res.Error != nil {
		return []interface{}{
			name, "", "", "", "", "", "", "", "", "", "", res.Error.Error(),
		}
	}

	r := res.Outcome.Internal
	return []interface{}{
		name,
		r.Compact.Score14,
		string(r.Compact.Risk),
		r.KPIs.PhasesAppliedPct,
		r.KPIs.ChecklistIndex,
		r.Product.Total,
		string(r.Interaction.ListeningLevel),
		r.Interaction.ClosingPresent,
		r.Disqualified,
		string(r.InputConfidence),
		string(res.Outcome.Level),
		"",
	}
}
