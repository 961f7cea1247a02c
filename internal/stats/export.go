package stats

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	stepsSheet  = "Steps"
	eventsSheet = "Events"
)

// ExportXLSX writes the per-step aggregates and every step completion of the
// report to an Excel workbook at path.
func ExportXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", stepsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(stepsSheet, "A1", &[]any{"Step", "Completions", "Avg seconds", "Best seconds", "Cycles", "Failures"}); err != nil {
		return err
	}
	for i, agg := range r.Steps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{agg.Step, agg.Completions, agg.AvgSeconds, agg.BestSeconds, agg.TotalCycles, agg.TotalFailures}
		if err := f.SetSheetRow(stepsSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(eventsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(eventsSheet, "A1", &[]any{"Run", "Step", "Path", "Started", "Ended", "Seconds", "Cycles", "Failures"}); err != nil {
		return err
	}
	for i, rec := range r.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rec.RunID,
			rec.Step,
			string(rec.Path),
			rec.StartedAt.UTC().Format(time.RFC3339),
			rec.EndedAt.UTC().Format(time.RFC3339),
			rec.Duration().Seconds(),
			rec.Cycles,
			rec.Failures,
		}
		if err := f.SetSheetRow(eventsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
