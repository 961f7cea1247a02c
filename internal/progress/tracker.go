package progress

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuiread/internal/model"
)

// Tracker is the single writer of the progress record. Every mutation is
// written through to the gateway as a whole record.
type Tracker struct {
	gw  Gateway
	log *zap.Logger
	p   model.UserProgress
}

// NewTracker loads the stored record. Read failures are logged and the
// tracker starts from defaults.
func NewTracker(ctx context.Context, gw Gateway, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := gw.Load(ctx)
	if err != nil {
		log.Error("failed to load progress", zap.Error(err))
		p = model.DefaultProgress()
	}
	return &Tracker{gw: gw, log: log, p: p}
}

// Progress returns a copy of the in-memory record.
func (t *Tracker) Progress() model.UserProgress {
	return t.p.Clone()
}

// Path returns the frozen training path.
func (t *Tracker) Path() model.Path {
	return t.p.UserPath
}

// Replace swaps in a whole record and persists it.
func (t *Tracker) Replace(ctx context.Context, p model.UserProgress) error {
	t.p = p.Clone()
	return t.save(ctx)
}

// UpdateMark sets the mark of a sentence, appending a new mark the first time
// the sentence is marked.
func (t *Tracker) UpdateMark(ctx context.Context, sentenceID int, kind model.MarkKind) error {
	found := false
	for i := range t.p.Marks {
		if t.p.Marks[i].SentenceID == sentenceID {
			t.p.Marks[i].Kind = kind
			found = true
			break
		}
	}
	if !found {
		t.p.Marks = append(t.p.Marks, model.SentenceMark{SentenceID: sentenceID, Kind: kind})
	}
	return t.save(ctx)
}

// Mark returns the mark of a sentence, if any.
func (t *Tracker) Mark(sentenceID int) (model.SentenceMark, bool) {
	for _, m := range t.p.Marks {
		if m.SentenceID == sentenceID {
			return m, true
		}
	}
	return model.SentenceMark{}, false
}

// Marks returns a copy of the marks in recording order.
func (t *Tracker) Marks() []model.SentenceMark {
	return append([]model.SentenceMark{}, t.p.Marks...)
}

// CountKind returns how many marks have the given kind.
func (t *Tracker) CountKind(kind model.MarkKind) int {
	n := 0
	for _, m := range t.p.Marks {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// CompleteStep moves to next and logs the current step as completed.
func (t *Tracker) CompleteStep(ctx context.Context, next int) error {
	t.ensureRunID()
	t.p.CompletedSteps = append(t.p.CompletedSteps, t.p.CurrentStep)
	t.p.CurrentStep = next
	t.p.CurrentSentence = 0
	return t.save(ctx)
}

// CompleteMarking finishes the marking pass and freezes the path.
func (t *Tracker) CompleteMarking(ctx context.Context, path model.Path) error {
	t.ensureRunID()
	t.p.CompletedSteps = append(t.p.CompletedSteps, 2)
	t.p.CurrentStep = 3
	t.p.CurrentSentence = 0
	t.p.UserPath = path
	return t.save(ctx)
}

// JumpTo moves to step, marking every lower step completed and every higher
// one pending. Steps outside 1..FinalStep are rejected.
func (t *Tracker) JumpTo(ctx context.Context, step int) error {
	if step < 1 || step > model.FinalStep {
		return fmt.Errorf("step %d out of range 1..%d", step, model.FinalStep)
	}
	completed := make([]int, 0, step)
	for s := 1; s < step; s++ {
		completed = append(completed, s)
	}
	t.p.CompletedSteps = completed
	t.p.CurrentStep = step
	t.p.CurrentSentence = 0
	return t.save(ctx)
}

// Reset deletes the stored record and reverts to defaults.
func (t *Tracker) Reset(ctx context.Context) error {
	t.p = model.DefaultProgress()
	if err := t.gw.Clear(ctx); err != nil {
		t.log.Error("failed to clear progress", zap.Error(err))
		return err
	}
	return nil
}

func (t *Tracker) ensureRunID() {
	if t.p.RunID == "" {
		t.p.RunID = uuid.NewString()
	}
}

func (t *Tracker) save(ctx context.Context) error {
	if err := t.gw.Save(ctx, t.p); err != nil {
		t.log.Error("failed to save progress", zap.Error(err))
		return err
	}
	return nil
}
