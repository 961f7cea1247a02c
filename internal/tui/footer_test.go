package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/training"
)

func TestRenderFooterBadges(t *testing.T) {
	m := newTestModel(t, nil)
	out := m.renderFooter(model.UserProgress{CurrentStep: 3, CompletedSteps: []int{1, 2, 2}})
	if !containsAll(out, []string{"✓1", "✓2", "[3]", " 4 ", " 7 "}) {
		t.Fatalf("footer missing expected badges: %s", out)
	}
	if strings.Contains(out, "✓3") {
		t.Fatalf("current step rendered as completed: %s", out)
	}
	if !containsAll(out, []string{"jump", "reset", "quit"}) {
		t.Fatalf("footer missing global keys: %s", out)
	}
}

func TestRenderTimerBar(t *testing.T) {
	out := renderTimerBar(model.TimerState{TimeLeft: 1, Duration: 2, Running: true}, 20)
	if !strings.HasSuffix(out, "00:01") {
		t.Fatalf("expected clock suffix, got %q", out)
	}
	if strings.Count(out, "█") != 7 || strings.Count(out, "░") != 7 {
		t.Fatalf("expected half-filled bar, got %q", out)
	}
	if got := renderTimerBar(model.TimerState{TimeLeft: 600, Duration: 600}, 3); got != "10:00" {
		t.Fatalf("expected bare clock on narrow width, got %q", got)
	}
}

func TestRenderCounters(t *testing.T) {
	out := renderCounters([]training.Counter{{Label: "cycles", Value: 3, Max: 25}, {Label: "failures", Value: 1}})
	if out != "cycles 3/25  failures 1" {
		t.Fatalf("unexpected counters: %q", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestRenderFooterRevisitedStepStaysCompleted(t *testing.T) {
	m := newTestModel(t, nil)
	out := m.renderFooter(model.UserProgress{CurrentStep: 2, CompletedSteps: []int{1, 2, 3}})
	if !containsAll(out, []string{"✓1", "✓2", "✓3", " 4 "}) {
		t.Fatalf("footer missing expected badges: %s", out)
	}
	if strings.Contains(out, "[2]") {
		t.Fatalf("completed step rendered as current: %s", out)
	}
}
