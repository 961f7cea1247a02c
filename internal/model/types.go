// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FinalStep is the step number that marks a finished training run.
const FinalStep = 8

// TrainingSteps is the number of exercise steps before completion.
const TrainingSteps = 7

// TrainingConfig defines drill durations and caps.
type TrainingConfig struct {
	ReadSeconds   int
	VerifySeconds int
	FinalSeconds  int
	RestSeconds   int
	MaxCycles     int
}

// DefaultTrainingConfig returns the stock drill settings.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		ReadSeconds:   2,
		VerifySeconds: 4,
		FinalSeconds:  4,
		RestSeconds:   600,
		MaxCycles:     25,
	}
}

// Sentence is one immutable corpus entry.
type Sentence struct {
	ID       int    `toml:"id" json:"id"`
	Text     string `toml:"text" json:"text"`
	Original string `toml:"original" json:"original,omitempty"`
}

// MarkKind is the comprehension state recorded for a sentence.
type MarkKind int

const (
	Unmarked MarkKind = iota
	Stuck
	Understood
	NotUnderstood
)

// String returns the mark glyph.
func (k MarkKind) String() string {
	switch k {
	case Stuck:
		return "✨"
	case Understood:
		return "⭕"
	case NotUnderstood:
		return "❌"
	default:
		return "·"
	}
}

// SentenceMark records the comprehension state of one sentence.
type SentenceMark struct {
	SentenceID int
	Kind       MarkKind
}

type sentenceMarkJSON struct {
	SentenceID      int  `json:"sentenceId"`
	IsStuck         bool `json:"isStuck"`
	IsUnderstood    bool `json:"isUnderstood"`
	IsNotUnderstood bool `json:"isNotUnderstood"`
}

// MarshalJSON keeps the three-flag record shape.
func (m SentenceMark) MarshalJSON() ([]byte, error) {
	return json.Marshal(sentenceMarkJSON{
		SentenceID:      m.SentenceID,
		IsStuck:         m.Kind == Stuck,
		IsUnderstood:    m.Kind == Understood,
		IsNotUnderstood: m.Kind == NotUnderstood,
	})
}

// UnmarshalJSON reads the three-flag record shape. When several flags are
// set, stuck wins over understood, which wins over not-understood.
func (m *SentenceMark) UnmarshalJSON(data []byte) error {
	var raw sentenceMarkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.SentenceID = raw.SentenceID
	switch {
	case raw.IsStuck:
		m.Kind = Stuck
	case raw.IsUnderstood:
		m.Kind = Understood
	case raw.IsNotUnderstood:
		m.Kind = NotUnderstood
	default:
		m.Kind = Unmarked
	}
	return nil
}

// Path is the training path chosen after the marking pass.
type Path string

const (
	PathNone Path = ""
	PathA    Path = "A"
	PathB    Path = "B"
	PathC    Path = "C"
)

// MarshalJSON encodes PathNone as null.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == PathNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts null or one of "A", "B", "C".
func (p *Path) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = PathNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Path(s) {
	case PathNone, PathA, PathB, PathC:
		*p = Path(s)
		return nil
	default:
		return fmt.Errorf("unknown path %q", s)
	}
}

// UserProgress is the persisted session record.
type UserProgress struct {
	CurrentStep     int            `json:"currentStep"`
	CurrentSentence int            `json:"currentSentence"`
	Marks           []SentenceMark `json:"marks"`
	UserPath        Path           `json:"userPath"`
	CompletedSteps  []int          `json:"completedSteps"`
	RunID           string         `json:"runId,omitempty"`
}

// DefaultProgress returns the record used when nothing is stored.
func DefaultProgress() UserProgress {
	return UserProgress{
		CurrentStep:     1,
		CurrentSentence: 0,
		Marks:           []SentenceMark{},
		UserPath:        PathNone,
		CompletedSteps:  []int{},
	}
}

// Clone returns a deep copy of the record.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.Marks = append([]SentenceMark{}, p.Marks...)
	out.CompletedSteps = append([]int{}, p.CompletedSteps...)
	return out
}

// IsFinished reports whether the record points past the last exercise step.
func (p UserProgress) IsFinished() bool {
	return p.CurrentStep < 1 || p.CurrentStep >= FinalStep
}

// TimerState is a snapshot of a countdown.
type TimerState struct {
	TimeLeft int
	Running  bool
	Duration int
}

// StepRecord captures one completed step for history.
type StepRecord struct {
	RunID     string
	Step      int
	Path      Path
	StartedAt time.Time
	EndedAt   time.Time
	Cycles    int
	Failures  int
}

// Duration returns how long the step took.
func (r StepRecord) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Last int
}

// StepAggregate summarizes all recorded completions of one step.
type StepAggregate struct {
	Step          int
	Completions   int
	AvgSeconds    float64
	BestSeconds   float64
	TotalCycles   int
	TotalFailures int
}
