// Package training drives the seven-step reading drill independent of any
// rendering layer.
package training

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuiread/internal/corpus"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/progress"
	"github.com/verte-zerg/tuiread/internal/timer"
)

// Timer ids used by the steps.
const (
	ReadTimer  timer.ID = "read"
	RestTimer  timer.ID = "rest"
	FinalTimer timer.ID = "final"
)

// Action is a user input understood by the session.
type Action int

const (
	ActStart             Action = iota // Start, continue or begin the next sub-phase
	ActMarkStuck                       // Mark the current sentence stuck
	ActMarkUnderstood                  // Mark the current sentence understood
	ActMarkNotUnderstood               // Mark the current sentence not understood
	ActConfirm                         // Understood, verified or next in no-voice reading
	ActNext
	ActPrev
	ActUnlimited    // Switch to unlimited mode
	ActVerification // Switch to timed verification mode
	ActFailed       // Report subvocalization
	ActReveal       // Toggle the original of a garbled sentence
)

// Recorder stores completed steps for history.
type Recorder interface {
	RecordStep(ctx context.Context, rec model.StepRecord) error
}

// step is the sub-state machine of one wizard screen. Sub-state lives only as
// long as the step value, so re-entering a step always starts fresh.
type step interface {
	number() int
	do(ctx context.Context, s *Session, a Action)
	expired(ctx context.Context, s *Session, id timer.ID)
	countdowns() map[timer.ID]*timer.Countdown
	view(s *Session) StepView
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRecorder sets where completed steps are recorded.
func WithRecorder(rec Recorder) Option {
	return func(s *Session) { s.rec = rec }
}

// Session owns the active step and the progress record.
type Session struct {
	tracker *progress.Tracker
	corpus  *corpus.Corpus
	cfg     model.TrainingConfig
	rec     Recorder
	log     *zap.Logger
	now     func() time.Time

	cur       step
	startedAt time.Time
	notice    string
}

// New resumes the session at the stored step.
func New(tracker *progress.Tracker, c *corpus.Corpus, cfg model.TrainingConfig, log *zap.Logger, opts ...Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		tracker: tracker,
		corpus:  c,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enter(tracker.Progress().CurrentStep)
	return s
}

// Step returns the current step number. Values outside 1..7 mean finished.
func (s *Session) Step() int {
	return s.tracker.Progress().CurrentStep
}

// Finished reports whether the completion view is active.
func (s *Session) Finished() bool {
	return s.cur == nil
}

// Progress returns a copy of the persisted record.
func (s *Session) Progress() model.UserProgress {
	return s.tracker.Progress()
}

// Corpus returns the sentence data.
func (s *Session) Corpus() *corpus.Corpus {
	return s.corpus
}

// Config returns the drill settings.
func (s *Session) Config() model.TrainingConfig {
	return s.cfg
}

// Notice returns the pending acknowledgement message, if any.
func (s *Session) Notice() string {
	return s.notice
}

// DismissNotice acknowledges the pending notice.
func (s *Session) DismissNotice() {
	s.notice = ""
}

// Do applies a user action. Actions are ignored while a notice is pending.
func (s *Session) Do(ctx context.Context, a Action) {
	if s.cur == nil || s.notice != "" {
		return
	}
	s.cur.do(ctx, s, a)
}

// Tick applies one elapsed second to the countdown named in msg.
func (s *Session) Tick(ctx context.Context, msg timer.TickMsg) {
	if s.cur == nil {
		return
	}
	c, ok := s.cur.countdowns()[msg.ID]
	if !ok {
		return
	}
	if c.Tick(msg.Gen) {
		s.cur.expired(ctx, s, msg.ID)
	}
}

// Countdowns returns the countdowns of the active step.
func (s *Session) Countdowns() map[timer.ID]*timer.Countdown {
	if s.cur == nil {
		return nil
	}
	return s.cur.countdowns()
}

// View describes what the active step shows.
func (s *Session) View() StepView {
	if s.cur == nil {
		return StepView{Step: s.Step(), Title: "Training complete", Phase: PhaseFinished}
	}
	v := s.cur.view(s)
	v.Step = s.cur.number()
	v.Path = s.tracker.Path()
	return v
}

// Reset clears all progress and returns to step 1.
func (s *Session) Reset(ctx context.Context) {
	if err := s.tracker.Reset(ctx); err != nil {
		s.log.Error("failed to reset progress", zap.Error(err))
	}
	s.notice = ""
	s.enter(1)
}

// JumpTo moves to step, marking lower steps completed. The step starts from
// its first sub-phase.
func (s *Session) JumpTo(ctx context.Context, n int) {
	if n < 1 || n > model.TrainingSteps {
		return
	}
	if err := s.tracker.JumpTo(ctx, n); err != nil {
		s.log.Error("failed to save jump", zap.Int("step", n), zap.Error(err))
	}
	s.notice = ""
	s.enter(n)
}

func (s *Session) enter(n int) {
	s.startedAt = s.now()
	switch n {
	case 1:
		s.cur = newReadStep(s)
	case 2:
		s.cur = newMarkStep(s)
	case 3:
		s.cur = newCycleStep(s)
	case 4:
		s.cur = newVerifyStep(s)
	case 5:
		s.cur = newRestStep(s)
	case 6:
		s.cur = newNoVoiceStep(s)
	case 7:
		s.cur = newGarbledStep(s)
	default:
		s.cur = nil
	}
}

type stepStats struct {
	cycles   int
	failures int
}

// complete records the finished step and enters next.
func (s *Session) complete(ctx context.Context, next int, stats stepStats) {
	done := s.cur.number()
	if err := s.tracker.CompleteStep(ctx, next); err != nil {
		s.log.Error("failed to save step completion", zap.Int("step", done), zap.Error(err))
	}
	s.finish(ctx, done, stats)
	s.enter(next)
}

// completeMarking freezes the path and enters step 3.
func (s *Session) completeMarking(ctx context.Context, path model.Path) {
	done := s.cur.number()
	if err := s.tracker.CompleteMarking(ctx, path); err != nil {
		s.log.Error("failed to save path", zap.String("path", string(path)), zap.Error(err))
	}
	s.finish(ctx, done, stepStats{})
	s.enter(3)
}

func (s *Session) finish(ctx context.Context, done int, stats stepStats) {
	p := s.tracker.Progress()
	rec := model.StepRecord{
		RunID:     p.RunID,
		Step:      done,
		Path:      p.UserPath,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
		Cycles:    stats.cycles,
		Failures:  stats.failures,
	}
	s.log.Info("step completed",
		zap.Int("step", done),
		zap.String("path", string(p.UserPath)),
		zap.Duration("took", rec.Duration()),
		zap.Int("cycles", stats.cycles),
		zap.Int("failures", stats.failures),
	)
	if s.rec == nil {
		return
	}
	if err := s.rec.RecordStep(ctx, rec); err != nil {
		s.log.Error("failed to record step", zap.Int("step", done), zap.Error(err))
	}
}

func (s *Session) raise(msg string) {
	s.log.Debug("notice", zap.String("message", msg))
	s.notice = msg
}

// mark records kind for the sentence and logs persistence failures.
func (s *Session) mark(ctx context.Context, id int, kind model.MarkKind) {
	if err := s.tracker.UpdateMark(ctx, id, kind); err != nil {
		s.log.Error("failed to save mark", zap.Int("sentence", id), zap.Error(err))
	}
}

// markKind maps a mark action to its kind.
func markKind(a Action) (model.MarkKind, bool) {
	switch a {
	case ActMarkStuck:
		return model.Stuck, true
	case ActMarkUnderstood:
		return model.Understood, true
	case ActMarkNotUnderstood:
		return model.NotUnderstood, true
	default:
		return model.Unmarked, false
	}
}

func (s *Session) markOf(id int) model.MarkKind {
	m, ok := s.tracker.Mark(id)
	if !ok {
		return model.Unmarked
	}
	return m.Kind
}
