package training

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// restStep is a rest period followed by a timed re-read with marking.
type restStep struct {
	phase Phase
	idx   int
	rest  *timer.Countdown
	read  *timer.Countdown
}

func newRestStep(s *Session) *restStep {
	return &restStep{
		phase: PhasePreRest,
		rest:  timer.New(s.cfg.RestSeconds),
		read:  timer.New(s.cfg.ReadSeconds),
	}
}

func (st *restStep) number() int { return 5 }

func (st *restStep) do(ctx context.Context, s *Session, a Action) {
	switch st.phase {
	case PhasePreRest:
		if a == ActStart {
			st.phase = PhaseResting
			st.rest.Start(s.cfg.RestSeconds)
		}
	case PhasePreRead:
		if a == ActStart {
			st.phase = PhaseReading
			st.idx = 0
			st.read.Start(s.cfg.ReadSeconds)
		}
	case PhaseReading:
		if kind, ok := markKind(a); ok {
			s.mark(ctx, s.corpus.Base[st.idx].ID, kind)
		}
	}
}

func (st *restStep) expired(ctx context.Context, s *Session, id timer.ID) {
	switch {
	case id == RestTimer && st.phase == PhaseResting:
		st.phase = PhasePreRead
	case id == ReadTimer && st.phase == PhaseReading:
		if st.idx < len(s.corpus.Base)-1 {
			st.idx++
			st.read.Start(s.cfg.ReadSeconds)
			return
		}
		if s.tracker.CountKind(model.NotUnderstood) == 0 {
			s.complete(ctx, 6, stepStats{})
			return
		}
		st.phase = PhasePreRead
		st.idx = 0
		s.raise("Some sentences are still marked not understood. Read them again.")
	}
}

func (st *restStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{RestTimer: st.rest, ReadTimer: st.read}
}

func (st *restStep) view(s *Session) StepView {
	v := StepView{
		Title: "Rest and re-read",
		Phase: st.phase,
		Total: len(s.corpus.Base),
		Counters: []Counter{
			{Label: "not understood", Value: s.tracker.CountKind(model.NotUnderstood), Max: len(s.corpus.Base)},
		},
	}
	switch st.phase {
	case PhasePreRest:
		v.Intro = []string{
			"Take a break away from the text before reading it again.",
			"Start the rest timer when you are ready.",
		}
		v.Actions = []Action{ActStart}
	case PhaseResting:
		v.Intro = []string{"Resting. Look away from the screen."}
		v.Timer = timerState(st.rest)
	case PhasePreRead:
		v.Intro = []string{
			"Read all sentences again and update their marks.",
			"The step ends when none is left not understood.",
		}
		v.Actions = []Action{ActStart}
	case PhaseReading:
		sentence := s.corpus.Base[st.idx]
		v.Index = st.idx
		v.Sentence = &sentence
		v.Mark = s.markOf(sentence.ID)
		v.Timer = timerState(st.read)
		v.Actions = []Action{ActMarkStuck, ActMarkUnderstood, ActMarkNotUnderstood}
	}
	return v
}
