package training

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/timer"
)

// readStep shows every base sentence for a fixed time.
type readStep struct {
	phase Phase
	idx   int
	read  *timer.Countdown
}

func newReadStep(s *Session) *readStep {
	return &readStep{phase: PhaseNotStarted, read: timer.New(s.cfg.ReadSeconds)}
}

func (st *readStep) number() int { return 1 }

func (st *readStep) do(_ context.Context, s *Session, a Action) {
	if st.phase == PhaseNotStarted && a == ActStart {
		st.phase = PhaseReading
		st.idx = 0
		st.read.Start(s.cfg.ReadSeconds)
	}
}

func (st *readStep) expired(ctx context.Context, s *Session, id timer.ID) {
	if id != ReadTimer || st.phase != PhaseReading {
		return
	}
	if st.idx < len(s.corpus.Base)-1 {
		st.idx++
		st.read.Start(s.cfg.ReadSeconds)
		return
	}
	s.complete(ctx, 2, stepStats{})
}

func (st *readStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{ReadTimer: st.read}
}

func (st *readStep) view(s *Session) StepView {
	v := StepView{
		Title: "Timed reading",
		Phase: st.phase,
		Total: len(s.corpus.Base),
	}
	if st.phase == PhaseNotStarted {
		v.Intro = []string{
			"Each sentence is shown for a few seconds, then the next one appears.",
			"Read at a steady pace and do not try to go back.",
		}
		v.Actions = []Action{ActStart}
		return v
	}
	v.Index = st.idx
	v.Sentence = sentenceAt(s.corpus.Base, st.idx)
	v.Timer = timerState(st.read)
	return v
}
