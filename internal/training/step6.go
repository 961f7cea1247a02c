package training

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// noVoiceStep practices the base sentences, verifies them and ends with a
// reading pass without subvocalization.
type noVoiceStep struct {
	phase    Phase
	idx      int
	failures int
	read     *timer.Countdown
	final    *timer.Countdown
}

func newNoVoiceStep(s *Session) *noVoiceStep {
	return &noVoiceStep{
		phase: PhasePreparation,
		read:  timer.New(s.cfg.ReadSeconds),
		final: timer.New(s.cfg.FinalSeconds),
	}
}

func (st *noVoiceStep) number() int { return 6 }

func (st *noVoiceStep) do(ctx context.Context, s *Session, a Action) {
	last := len(s.corpus.Base) - 1
	switch st.phase {
	case PhasePreparation, PhaseUnlimited, PhaseVerification:
		switch a {
		case ActUnlimited:
			st.phase = PhaseUnlimited
			st.read.Stop()
		case ActVerification:
			st.phase = PhaseVerification
			st.idx = 0
			st.read.Start(s.cfg.ReadSeconds)
		case ActNext:
			if st.phase == PhaseUnlimited && st.idx < last {
				st.idx++
			}
		case ActPrev:
			if st.phase == PhaseUnlimited && st.idx > 0 {
				st.idx--
			}
		default:
			if kind, ok := markKind(a); ok && st.phase != PhasePreparation {
				s.mark(ctx, s.corpus.Base[st.idx].ID, kind)
			}
		}
	case PhaseNoVoice:
		switch a {
		case ActConfirm, ActNext:
			switch {
			case st.idx < last-1:
				st.idx++
			case st.idx == last-1:
				st.idx = last
				st.final.Start(s.cfg.FinalSeconds)
			}
		case ActFailed:
			st.failures++
			st.idx = 0
			st.final.Stop()
			s.raise("Subvocalization reported. Start again from the first sentence.")
		}
	case PhaseCompleted:
		if a == ActStart {
			s.complete(ctx, 7, stepStats{failures: st.failures})
		}
	}
}

func (st *noVoiceStep) expired(_ context.Context, s *Session, id timer.ID) {
	switch {
	case id == ReadTimer && st.phase == PhaseVerification:
		if st.idx < len(s.corpus.Base)-1 {
			st.idx++
			st.read.Start(s.cfg.ReadSeconds)
			return
		}
		if s.tracker.CountKind(model.NotUnderstood) == 0 {
			st.phase = PhaseNoVoice
			st.idx = 0
			return
		}
		st.phase = PhaseUnlimited
		s.raise("Some sentences are still not understood. Keep practicing.")
	case id == FinalTimer && st.phase == PhaseNoVoice:
		st.phase = PhaseCompleted
	}
}

func (st *noVoiceStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{ReadTimer: st.read, FinalTimer: st.final}
}

func (st *noVoiceStep) view(s *Session) StepView {
	v := StepView{
		Title: "Reading without inner voice",
		Phase: st.phase,
		Total: len(s.corpus.Base),
		Counters: []Counter{
			{Label: "failures", Value: st.failures},
		},
	}
	switch st.phase {
	case PhasePreparation:
		v.Intro = []string{
			"Unlimited mode: practice the sentences with no time limit.",
			fmt.Sprintf("Verification mode: %d s per sentence. With nothing left not understood,", s.cfg.ReadSeconds),
			"the no-voice reading starts. Report any inner voice and start over.",
			fmt.Sprintf("The last sentence must be read within %d s.", s.cfg.FinalSeconds),
		}
		v.Actions = []Action{ActUnlimited, ActVerification}
		return v
	case PhaseCompleted:
		v.Intro = []string{"No-voice reading completed."}
		v.Actions = []Action{ActStart}
		return v
	}
	sentence := s.corpus.Base[st.idx]
	v.Index = st.idx
	v.Sentence = &sentence
	v.Mark = s.markOf(sentence.ID)
	switch st.phase {
	case PhaseUnlimited:
		v.Actions = []Action{ActPrev, ActNext, ActMarkStuck, ActMarkUnderstood, ActMarkNotUnderstood, ActVerification}
	case PhaseVerification:
		v.Timer = timerState(st.read)
		v.Actions = []Action{ActMarkStuck, ActMarkUnderstood, ActMarkNotUnderstood, ActUnlimited}
	case PhaseNoVoice:
		if st.idx == len(s.corpus.Base)-1 {
			v.Timer = timerState(st.final)
		}
		v.Actions = []Action{ActConfirm, ActFailed}
	}
	return v
}
