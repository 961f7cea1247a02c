package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Records []model.StepRecord
	Steps   []model.StepAggregate
	Runs    int
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	records, err := st.ListStepEvents(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	runs, err := st.CountRuns(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Records: records,
		Steps:   AggregateSteps(records),
		Runs:    runs,
	}, nil
}

// Render writes the summary and the per-step table sized to totalWidth
// terminal columns.
func (r Report) Render(w io.Writer, window, totalWidth int) error {
	if err := RenderSummary(w, r.Records, r.Runs); err != nil {
		return err
	}
	return RenderStepTable(w, r.Steps, r.Records, window, TrendWidthFor(totalWidth))
}
