package training

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/timer"
)

// garbledStep confirms each garbled sentence without a timer.
type garbledStep struct {
	phase      Phase
	idx        int
	understood map[int]bool
	revealed   bool
}

func newGarbledStep(*Session) *garbledStep {
	return &garbledStep{phase: PhaseNotStarted, understood: map[int]bool{}}
}

func (st *garbledStep) number() int { return 7 }

func (st *garbledStep) do(ctx context.Context, s *Session, a Action) {
	if st.phase == PhaseNotStarted {
		if a == ActStart {
			st.phase = PhaseReading
		}
		return
	}
	n := len(s.corpus.Garbled)
	switch a {
	case ActConfirm, ActMarkUnderstood:
		st.understood[st.idx] = true
		if len(st.understood) == n {
			s.complete(ctx, 8, stepStats{})
		}
	case ActNext:
		if st.idx < n-1 {
			st.idx++
			st.revealed = false
		}
	case ActPrev:
		if st.idx > 0 {
			st.idx--
			st.revealed = false
		}
	case ActReveal:
		st.revealed = !st.revealed
	}
}

func (st *garbledStep) expired(context.Context, *Session, timer.ID) {}

func (st *garbledStep) countdowns() map[timer.ID]*timer.Countdown { return nil }

func (st *garbledStep) view(s *Session) StepView {
	v := StepView{
		Title: "Garbled text",
		Phase: st.phase,
		Total: len(s.corpus.Garbled),
		Counters: []Counter{
			{Label: "understood", Value: len(st.understood), Max: len(s.corpus.Garbled)},
		},
	}
	if st.phase == PhaseNotStarted {
		v.Intro = []string{
			"Key words are replaced by symbols. Read slowly, one sentence at a time.",
			"Understand how the symbols relate inside the sentence.",
			"Do not translate symbols back to the words they replace.",
		}
		v.Actions = []Action{ActStart}
		return v
	}
	v.Index = st.idx
	v.Sentence = sentenceAt(s.corpus.Garbled, st.idx)
	v.Done = st.understood[st.idx]
	v.Revealed = st.revealed
	v.Actions = []Action{ActConfirm, ActPrev, ActNext, ActReveal}
	return v
}
