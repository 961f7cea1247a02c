package training

import "github.com/verte-zerg/tuiread/internal/model"

// Phase is the sub-state of the active step.
type Phase int

const (
	PhaseNotStarted   Phase = iota // Intro screen before the drill starts
	PhaseReading                   // Timed or manual reading
	PhaseCycling                   // Step 3 countdown drill
	PhaseUnlimited                 // No countdown, manual navigation
	PhaseVerification              // Countdown-gated confirmation
	PhasePreRest                   // Step 5 before the rest period
	PhaseResting                   // Step 5 rest countdown
	PhasePreRead                   // Step 5 between rest and re-reading
	PhasePreparation               // Step 6 mode choice
	PhaseNoVoice                   // Step 6 reading without subvocalization
	PhaseCompleted                 // Step 6 final sentence done
	PhaseFinished                  // All steps done
)

var phaseNames = map[Phase]string{
	PhaseNotStarted:   "not started",
	PhaseReading:      "reading",
	PhaseCycling:      "cycling",
	PhaseUnlimited:    "unlimited",
	PhaseVerification: "verification",
	PhasePreRest:      "before rest",
	PhaseResting:      "resting",
	PhasePreRead:      "before reading",
	PhasePreparation:  "preparation",
	PhaseNoVoice:      "no voice",
	PhaseCompleted:    "completed",
	PhaseFinished:     "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Counter is a labelled progress figure such as cycles or verified sentences.
type Counter struct {
	Label string
	Value int
	Max   int
}

// MarkRow pairs a sentence with its current mark.
type MarkRow struct {
	SentenceID int
	Kind       model.MarkKind
}

// StepView is a rendering-agnostic snapshot of the active step.
type StepView struct {
	Step     int
	Title    string
	Path     model.Path
	Phase    Phase
	Intro    []string
	Sentence *model.Sentence
	Index    int
	Total    int
	Mark     model.MarkKind
	Done     bool // current sentence understood or verified in this step
	Timer    *model.TimerState
	Counters []Counter
	Marks    []MarkRow
	Revealed bool
	Actions  []Action
}

func sentenceAt(list []model.Sentence, idx int) *model.Sentence {
	if idx < 0 || idx >= len(list) {
		return nil
	}
	s := list[idx]
	return &s
}

func timerState(c interface{ State() model.TimerState }) *model.TimerState {
	st := c.State()
	return &st
}
