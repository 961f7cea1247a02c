package training

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/progress"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// markStep is the timed marking pass that decides the path.
type markStep struct {
	phase Phase
	idx   int
	read  *timer.Countdown
}

func newMarkStep(s *Session) *markStep {
	return &markStep{phase: PhaseNotStarted, read: timer.New(s.cfg.ReadSeconds)}
}

func (st *markStep) number() int { return 2 }

func (st *markStep) do(ctx context.Context, s *Session, a Action) {
	switch st.phase {
	case PhaseNotStarted:
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

func (st *markStep) expired(ctx context.Context, s *Session, id timer.ID) {
	if id != ReadTimer || st.phase != PhaseReading {
		return
	}
	sentence := s.corpus.Base[st.idx]
	if s.markOf(sentence.ID) == model.Unmarked {
		s.mark(ctx, sentence.ID, model.NotUnderstood)
	}
	if st.idx < len(s.corpus.Base)-1 {
		st.idx++
		st.read.Start(s.cfg.ReadSeconds)
		return
	}
	s.completeMarking(ctx, progress.Classify(s.tracker.Marks()))
}

func (st *markStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{ReadTimer: st.read}
}

func (st *markStep) view(s *Session) StepView {
	v := StepView{
		Title: "Marking pass",
		Phase: st.phase,
		Total: len(s.corpus.Base),
	}
	for _, m := range s.tracker.Marks() {
		v.Marks = append(v.Marks, MarkRow{SentenceID: m.SentenceID, Kind: m.Kind})
	}
	if st.phase == PhaseNotStarted {
		v.Intro = []string{
			"Read each sentence again and mark it before time runs out.",
			model.Stuck.String() + " stuck: comprehension broke down here.",
			model.Understood.String() + " understood.",
			model.NotUnderstood.String() + " not understood. Unmarked sentences count as not understood.",
		}
		v.Actions = []Action{ActStart}
		return v
	}
	sentence := s.corpus.Base[st.idx]
	v.Index = st.idx
	v.Sentence = &sentence
	v.Mark = s.markOf(sentence.ID)
	v.Timer = timerState(st.read)
	v.Actions = []Action{ActMarkStuck, ActMarkUnderstood, ActMarkNotUnderstood}
	return v
}
