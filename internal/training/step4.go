package training

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// verifyStep confirms each path sentence inside a short window. Unlimited mode
// is for practice and never verifies.
type verifyStep struct {
	phase     Phase
	sentences []model.Sentence
	idx       int
	verified  map[int]bool
	window    *timer.Countdown
}

func newVerifyStep(s *Session) *verifyStep {
	return &verifyStep{
		phase:     PhaseNotStarted,
		sentences: s.corpus.ForPath(s.tracker.Path()),
		verified:  map[int]bool{},
		window:    timer.New(s.cfg.VerifySeconds),
	}
}

func (st *verifyStep) number() int { return 4 }

func (st *verifyStep) do(ctx context.Context, s *Session, a Action) {
	switch a {
	case ActUnlimited:
		st.phase = PhaseUnlimited
		st.window.Stop()
	case ActVerification:
		st.phase = PhaseVerification
		st.window.Start(s.cfg.VerifySeconds)
	case ActConfirm:
		if st.phase != PhaseVerification || !st.window.Running() {
			return
		}
		st.verified[st.idx] = true
		if len(st.verified) == len(st.sentences) {
			st.window.Stop()
			s.complete(ctx, 5, stepStats{})
			return
		}
		st.idx = firstMissing(len(st.sentences), st.verified)
		st.window.Start(s.cfg.VerifySeconds)
	case ActNext:
		if st.phase == PhaseNotStarted || st.idx >= len(st.sentences)-1 {
			return
		}
		st.idx++
		st.rearm(s)
	case ActPrev:
		if st.phase == PhaseNotStarted || st.idx == 0 {
			return
		}
		st.idx--
		st.rearm(s)
	}
}

func (st *verifyStep) rearm(s *Session) {
	if st.phase == PhaseVerification {
		st.window.Start(s.cfg.VerifySeconds)
	}
}

// expired closes the window. Choosing verification mode again re-arms it.
func (st *verifyStep) expired(context.Context, *Session, timer.ID) {}

func (st *verifyStep) countdowns() map[timer.ID]*timer.Countdown {
	return map[timer.ID]*timer.Countdown{ReadTimer: st.window}
}

func (st *verifyStep) view(s *Session) StepView {
	v := StepView{
		Title: "Verification",
		Phase: st.phase,
		Total: len(st.sentences),
		Counters: []Counter{
			{Label: "verified", Value: len(st.verified), Max: len(st.sentences)},
		},
		Actions: []Action{ActUnlimited, ActVerification},
	}
	if st.phase == PhaseNotStarted {
		v.Intro = []string{
			pathRule(s.tracker.Path()),
			"Unlimited mode: read the path sentences at your own pace.",
			fmt.Sprintf("Verification mode: confirm each sentence within %d s.", s.cfg.VerifySeconds),
			"The step ends once every sentence is verified.",
		}
		return v
	}
	v.Index = st.idx
	v.Sentence = sentenceAt(st.sentences, st.idx)
	v.Done = st.verified[st.idx]
	v.Actions = append(v.Actions, ActNext, ActPrev)
	if st.phase == PhaseVerification {
		v.Timer = timerState(st.window)
		v.Actions = append(v.Actions, ActConfirm)
	}
	return v
}
