// Package stats contains history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuiread/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AggregateSteps summarizes records per step, ordered by step number.
func AggregateSteps(records []model.StepRecord) []model.StepAggregate {
	byStep := map[int]*model.StepAggregate{}
	for _, rec := range records {
		agg, ok := byStep[rec.Step]
		if !ok {
			agg = &model.StepAggregate{Step: rec.Step, BestSeconds: math.Inf(1)}
			byStep[rec.Step] = agg
		}
		secs := rec.Duration().Seconds()
		agg.Completions++
		agg.AvgSeconds += secs
		if secs < agg.BestSeconds {
			agg.BestSeconds = secs
		}
		agg.TotalCycles += rec.Cycles
		agg.TotalFailures += rec.Failures
	}
	out := make([]model.StepAggregate, 0, len(byStep))
	for _, agg := range byStep {
		agg.AvgSeconds /= float64(agg.Completions)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

// StepDurations returns the duration in seconds of each completion of step,
// in record order.
func StepDurations(records []model.StepRecord, step int) []float64 {
	var out []float64
	for _, rec := range records {
		if rec.Step == step {
			out = append(out, rec.Duration().Seconds())
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals over the loaded history.
func RenderSummary(w io.Writer, records []model.StepRecord, runs int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No history found.")
		return err
	}
	finished := 0
	for _, rec := range records {
		if rec.Step == model.TrainingSteps {
			finished++
		}
	}
	first := records[0].EndedAt.Local().Format("2006-01-02 15:04")
	last := records[len(records)-1].EndedAt.Local().Format("2006-01-02 15:04")
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", runs),
		fmt.Sprintf("Finished runs: %d", finished),
		fmt.Sprintf("Step completions: %d", len(records)),
		fmt.Sprintf("Period: %s - %s", first, last),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderStepTable prints per-step aggregates with a trend of durations. The
// trend keeps at most trendWidth recent completions; zero means all.
func RenderStepTable(w io.Writer, aggs []model.StepAggregate, records []model.StepRecord, window, trendWidth int) error {
	if len(aggs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Step"); err != nil {
		return err
	}
	headers := []string{"Step", "Done", "Avg", "Best", "Cycles", "Failures", "Trend"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		durations := MovingAverage(StepDurations(records, agg.Step), window)
		if trendWidth > 0 && len(durations) > trendWidth {
			durations = durations[len(durations)-trendWidth:]
		}
		trend := Sparkline(durations)
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Step),
			fmt.Sprintf("%d", agg.Completions),
			FormatSeconds(agg.AvgSeconds),
			FormatSeconds(agg.BestSeconds),
			fmt.Sprintf("%d", agg.TotalCycles),
			fmt.Sprintf("%d", agg.TotalFailures),
			trend,
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	if err := RenderTable(w, headers, rows, rightAlign); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatSeconds renders a duration as M:SS.
func FormatSeconds(secs float64) string {
	total := int(math.Round(secs))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
