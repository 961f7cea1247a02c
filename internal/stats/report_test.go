package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0).UTC()
	records := []model.StepRecord{
		{RunID: "r1", Step: 1, Path: model.PathNone, StartedAt: base, EndedAt: base.Add(32 * time.Second)},
		{RunID: "r1", Step: 2, Path: model.PathB, StartedAt: base.Add(time.Minute), EndedAt: base.Add(2 * time.Minute)},
		{RunID: "r1", Step: 3, Path: model.PathB, StartedAt: base.Add(3 * time.Minute), EndedAt: base.Add(5 * time.Minute), Cycles: 25},
		{RunID: "r2", Step: 1, Path: model.PathNone, StartedAt: base.Add(time.Hour), EndedAt: base.Add(time.Hour + 40*time.Second)},
	}
	for _, rec := range records {
		if err := st.RecordStep(ctx, rec); err != nil {
			t.Fatalf("record step: %v", err)
		}
	}
	return st
}

func TestBuildReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryConfig{Last: 3})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}
	if report.Records[0].Step != 2 || report.Records[2].RunID != "r2" {
		t.Fatalf("unexpected records: %+v", report.Records)
	}
	if report.Runs != 2 {
		t.Fatalf("expected 2 runs, got %d", report.Runs)
	}
	if len(report.Steps) != 3 {
		t.Fatalf("expected 3 step aggregates, got %d", len(report.Steps))
	}
	if report.Steps[2].TotalCycles != 25 {
		t.Fatalf("expected 25 cycles for step 3, got %d", report.Steps[1].TotalCycles)
	}
}

func TestAggregateSteps(t *testing.T) {
	base := time.Unix(0, 0)
	aggs := AggregateSteps([]model.StepRecord{
		{Step: 6, StartedAt: base, EndedAt: base.Add(90 * time.Second), Failures: 2},
		{Step: 1, StartedAt: base, EndedAt: base.Add(30 * time.Second)},
		{Step: 6, StartedAt: base, EndedAt: base.Add(30 * time.Second), Failures: 1},
	})
	if len(aggs) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(aggs))
	}
	if aggs[0].Step != 1 || aggs[1].Step != 6 {
		t.Fatalf("unexpected order: %+v", aggs)
	}
	six := aggs[1]
	if six.Completions != 2 || six.AvgSeconds != 60 || six.BestSeconds != 30 || six.TotalFailures != 3 {
		t.Fatalf("unexpected step 6 aggregate: %+v", six)
	}
}

func TestRenderReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, 1, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs: 2", "Step completions: 4", "Per-Step", "0:36", "2:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No history found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("expected flat line, got %q", got)
	}
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("expected extremes, got %q", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(600); got != "10:00" {
		t.Fatalf("expected 10:00, got %q", got)
	}
	if got := FormatSeconds(4.4); got != "0:04" {
		t.Fatalf("expected 0:04, got %q", got)
	}
}

func TestTrendWidthFor(t *testing.T) {
	if got := TrendWidthFor(120); got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
	if got := TrendWidthFor(20); got != minTrendWidth {
		t.Fatalf("expected minimum width, got %d", got)
	}
}

func TestExportXLSX(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := ExportXLSX(path, report); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	steps, err := f.GetRows(stepsSheet)
	if err != nil {
		t.Fatalf("read steps: %v", err)
	}
	if len(steps) != 4 || steps[0][0] != "Step" || steps[1][0] != "1" {
		t.Fatalf("unexpected steps sheet: %v", steps)
	}
	events, err := f.GetRows(eventsSheet)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(events) != 5 || events[3][1] != "3" || events[3][2] != "B" {
		t.Fatalf("unexpected events sheet: %v", events)
	}
}
