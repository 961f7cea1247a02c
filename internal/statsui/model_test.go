package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

func newTestModel(t *testing.T, cfg model.HistoryConfig) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		rec := model.StepRecord{
			RunID:     "run-0001-abcdef",
			Step:      i,
			Path:      model.PathA,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			EndedAt:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		}
		if err := st.RecordStep(context.Background(), rec); err != nil {
			t.Fatalf("record step: %v", err)
		}
	}
	m := NewModel(st, cfg, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestOverviewShowsSummary(t *testing.T) {
	m := newTestModel(t, model.HistoryConfig{})
	view := m.View()
	for _, want := range []string{"Overview", "Runs", "Steps done", "Step 3"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := newTestModel(t, model.HistoryConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabEvents {
		t.Fatalf("expected events tab, got %d", m.activeTab)
	}
	if !m.tables[tabEvents].Focused() {
		t.Fatalf("expected events table focused")
	}
	if !strings.Contains(m.View(), "run-0001") {
		t.Fatalf("expected run id in events view")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview tab, got %d", m.activeTab)
	}
}

func TestFilterAppliesLast(t *testing.T) {
	m := newTestModel(t, model.HistoryConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode closed")
	}
	if m.cfg.Last != 2 || len(m.report.Records) != 2 {
		t.Fatalf("expected 2 records, got last=%d records=%d", m.cfg.Last, len(m.report.Records))
	}
}

func TestFilterRejectsInvalidLast(t *testing.T) {
	m := newTestModel(t, model.HistoryConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error, got mode=%v err=%q", m.filterMode, m.filterError)
	}
}

func TestWindowKeys(t *testing.T) {
	m := newTestModel(t, model.HistoryConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if m.window != 2 {
		t.Fatalf("expected window 2, got %d", m.window)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if m.window != 1 {
		t.Fatalf("expected window 1, got %d", m.window)
	}
}

func TestEventRowsNewestFirst(t *testing.T) {
	rows := eventRows([]model.StepRecord{
		{RunID: "a", Step: 1},
		{RunID: "b", Step: 2, Path: model.PathC},
	})
	if rows[0][1] != "b" || rows[0][3] != "C" || rows[1][3] != "-" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
