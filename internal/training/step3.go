package training

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// cycleStep rotates the path sentences under a short countdown until each is
// understood or the cycle cap is reached.
type cycleStep struct {
	phase      Phase
	sentences  []model.Sentence
	idx        int
	understood map[int]bool
	cycles     int
	limit      int
	read       *timer.Countdown
}

func newCycleStep(s *Session) *cycleStep {
	limit := s.tracker.CountKind(model.NotUnderstood) / 2
	if limit < 1 {
		limit = 1
	}
	return &cycleStep{
		phase:      PhaseNotStarted,
		sentences:  s.corpus.ForPath(s.tracker.Path()),
		understood: map[int]bool{},
		limit:      limit,
		read:       timer.New(limit),
	}
}

func (st *cycleStep) number() int { return 3 }

func (st *cycleStep) do(ctx context.Context, s *Session, a Action) {
	switch st.phase {
	case PhaseNotStarted:
		if a == ActStart {
			st.phase = PhaseCycling
			st.read.Start(st.limit)
		}
	case PhaseCycling:
		if a != ActConfirm && a != ActMarkUnderstood {
			return
		}
		st.understood[st.idx] = true
		if len(st.understood) == len(st.sentences) {
			st.read.Stop()
			s.complete(ctx, 4, stepStats{cycles: st.cycles})
			return
		}
		st.idx = firstMissing(len(st.sentences), st.understood)
		st.read.Start(st.limit)
	}
}

func (st *cycleStep) expired(ctx context.Context, s *Session, id timer.ID) {
	if id != ReadTimer || st.phase != PhaseCycling {
		return
	}
	st.cycles++
	if st.cycles >= s.cfg.MaxCycles {
		s.complete(ctx, 4, stepStats{cycles: st.cycles})
		return
	}
	if len(st.sentences)-len(st.understood) > 1 {
		st.idx = nextMissing(st.idx, len(st.sentences), st.understood)
	}
	st.read.Start(st.limit)
}

func (st *cycleStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{ReadTimer: st.read}
}

func (st *cycleStep) view(s *Session) StepView {
	v := StepView{
		Title: "Countdown cycles",
		Phase: st.phase,
		Total: len(st.sentences),
		Counters: []Counter{
			{Label: "cycles", Value: st.cycles, Max: s.cfg.MaxCycles},
			{Label: "understood", Value: len(st.understood), Max: len(st.sentences)},
		},
	}
	if st.phase == PhaseNotStarted {
		v.Intro = []string{
			pathRule(s.tracker.Path()),
			fmt.Sprintf("Each sentence gets %d s. Confirm it once you understand it.", st.limit),
			"Unconfirmed sentences come back in rotation.",
			fmt.Sprintf("The drill ends when all are understood or after %d cycles.", s.cfg.MaxCycles),
		}
		v.Actions = []Action{ActStart}
		return v
	}
	v.Index = st.idx
	v.Sentence = sentenceAt(st.sentences, st.idx)
	v.Done = st.understood[st.idx]
	v.Timer = timerState(st.read)
	v.Actions = []Action{ActConfirm}
	return v
}

// pathRule describes why a path was chosen.
func pathRule(p model.Path) string {
	switch p {
	case model.PathB:
		return "Path B: first stuck mark after sentence 7 and nothing understood."
	case model.PathC:
		return "Path C: first stuck mark after sentence 7 with understood sentences, or none stuck."
	default:
		return "Path A: first stuck mark within sentences 1-7."
	}
}

// firstMissing returns the lowest index not in done, or -1.
func firstMissing(n int, done map[int]bool) int {
	for i := 0; i < n; i++ {
		if !done[i] {
			return i
		}
	}
	return -1
}

// nextMissing returns the next index after cur, wrapping around, that is not
// in done. It returns cur when no other index is left.
func nextMissing(cur, n int, done map[int]bool) int {
	for i := 1; i <= n; i++ {
		next := (cur + i) % n
		if !done[next] {
			return next
		}
	}
	return cur
}
