// Package tui provides the Bubble Tea reading trainer interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/timer"
	"github.com/verte-zerg/tuiread/internal/training"
)

// Model implements the Bubble Tea wizard UI.
type Model struct {
	ctx     context.Context
	session *training.Session
	sched   *timer.Scheduler
	log     *zap.Logger
	keys    keyMap
	help    help.Model
	symbols map[rune]struct{}

	width  int
	height int

	confirmReset bool
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	sentenceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB77E"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B48EAD"))
	introStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#BFBFBF"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	barFullStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	completedBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB77E"))
	currentBadge   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	pendingBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4D4F")).
			Padding(1, 3)
)

// NewModel constructs the wizard UI over a session.
func NewModel(ctx context.Context, session *training.Session, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		ctx:     ctx,
		session: session,
		sched:   timer.NewScheduler(),
		log:     log,
		keys:    defaultKeyMap(),
		help:    help.New(),
		symbols: symbolSet(session.Corpus().Symbols),
	}
	m.keys.enableFor(session.View().Actions)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.sched.Sync(m.session.Countdowns())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case timer.TickMsg:
		if m.confirmReset {
			// Hold the tick so the drill resumes at the same generation.
			return m, timer.Schedule(msg.ID, msg.Gen)
		}
		if m.sched.Delivered(msg) {
			m.session.Tick(m.ctx, msg)
		}
		return m, m.sync()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.keys.enableFor(m.session.View().Actions)
		m.handleKey(msg)
		return m, m.sync()
	default:
		return m, nil
	}
}

func (m *Model) sync() tea.Cmd {
	m.keys.enableFor(m.session.View().Actions)
	return m.sched.Sync(m.session.Countdowns())
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	if m.confirmReset {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.log.Info("progress reset from the interface")
			m.session.Reset(m.ctx)
			m.confirmReset = false
		case key.Matches(msg, m.keys.No):
			m.confirmReset = false
		}
		return
	}
	if m.session.Notice() != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.session.DismissNotice()
		}
		return
	}
	switch {
	case key.Matches(msg, m.keys.Reset):
		m.confirmReset = true
		return
	case key.Matches(msg, m.keys.Jump):
		m.session.JumpTo(m.ctx, int(msg.String()[0]-'0'))
		return
	}
	for _, ab := range m.keys.actionBindings() {
		if key.Matches(msg, *ab.binding) {
			m.session.Do(m.ctx, ab.action)
			return
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	contentWidth := int(float64(width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}

	var content string
	switch {
	case m.confirmReset:
		content = modalStyle.Render("Reset all progress?\n\n" + mutedStyle.Render("y yes · n no"))
	case m.session.Notice() != "":
		content = modalStyle.Render(wrapPlain(m.session.Notice(), contentWidth-8, introStyle) + "\n\n" + mutedStyle.Render("enter ok"))
	case m.session.Finished():
		content = m.renderCompletion(contentWidth)
	default:
		content = m.renderStep(m.session.View(), contentWidth)
	}

	footer := m.renderFooter(m.session.Progress())
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - footerHeight
	if bodyHeight < 1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerBlock := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
	return body + "\n" + footerBlock
}

func (m *Model) renderStep(v training.StepView, width int) string {
	lines := []string{renderHeader(v), ""}
	if v.Sentence == nil {
		for _, line := range v.Intro {
			lines = append(lines, wrapPlain(line, width, introStyle))
		}
	} else {
		lines = append(lines, m.renderSentence(v, width))
		if v.Revealed && v.Sentence.Original != "" {
			lines = append(lines, "", wrapPlain(v.Sentence.Original, width, mutedStyle))
		}
		status := fmt.Sprintf("Sentence %d/%d", v.Index+1, v.Total)
		if v.Mark != model.Unmarked {
			status += "  " + v.Mark.String()
		}
		if v.Done {
			status += "  " + doneStyle.Render("✓")
		}
		lines = append(lines, "", mutedStyle.Render(status))
	}
	if v.Timer != nil {
		lines = append(lines, "", renderTimerBar(*v.Timer, width))
	}
	if counters := renderCounters(v.Counters); counters != "" {
		lines = append(lines, mutedStyle.Render(counters))
	}
	if len(v.Marks) > 0 {
		lines = append(lines, "", renderMarks(v.Marks, width))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderSentence(v training.StepView, width int) string {
	base := sentenceStyle
	if v.Done {
		base = doneStyle
	}
	return wrapStyledRunes(styleSentence(v.Sentence.Text, base, m.symbols), width)
}

func (m *Model) renderCompletion(width int) string {
	p := m.session.Progress()
	lines := []string{
		titleStyle.Render("Training complete"),
		"",
		introStyle.Render(fmt.Sprintf("Path %s", pathLabel(p.UserPath))),
		introStyle.Render(fmt.Sprintf("%s %d  %s %d  %s %d",
			model.Stuck, countKind(p.Marks, model.Stuck),
			model.Understood, countKind(p.Marks, model.Understood),
			model.NotUnderstood, countKind(p.Marks, model.NotUnderstood))),
		"",
		mutedStyle.Render("R starts over · 1-7 revisits a step"),
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func renderHeader(v training.StepView) string {
	header := titleStyle.Render(fmt.Sprintf("Step %d · %s", v.Step, v.Title))
	meta := []string{v.Phase.String()}
	if v.Path != model.PathNone {
		meta = append(meta, "path "+string(v.Path))
	}
	return header + "  " + mutedStyle.Render(strings.Join(meta, " · "))
}

// renderTimerBar draws the elapsed share of a countdown and its clock.
func renderTimerBar(st model.TimerState, width int) string {
	clock := timer.Format(st.TimeLeft)
	barWidth := width - len(clock) - 1
	if barWidth < 1 {
		return clock
	}
	filled := barWidth
	if st.Duration > 0 {
		filled = (st.Duration - st.TimeLeft) * barWidth / st.Duration
	}
	if filled < 0 {
		filled = 0
	}
	bar := barFullStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	return bar + " " + clock
}

func renderCounters(counters []training.Counter) string {
	parts := make([]string, 0, len(counters))
	for _, c := range counters {
		if c.Max > 0 {
			parts = append(parts, fmt.Sprintf("%s %d/%d", c.Label, c.Value, c.Max))
		} else {
			parts = append(parts, fmt.Sprintf("%s %d", c.Label, c.Value))
		}
	}
	return strings.Join(parts, "  ")
}

func renderMarks(marks []training.MarkRow, width int) string {
	parts := make([]string, 0, len(marks))
	for _, row := range marks {
		parts = append(parts, fmt.Sprintf("%d%s", row.SentenceID, row.Kind))
	}
	return wrapPlain(strings.Join(parts, " "), width, mutedStyle)
}

// renderFooter shows one badge per step and the key help.
func (m *Model) renderFooter(p model.UserProgress) string {
	completed := map[int]bool{}
	for _, s := range p.CompletedSteps {
		completed[s] = true
	}
	badges := make([]string, 0, model.TrainingSteps)
	for s := 1; s <= model.TrainingSteps; s++ {
		switch {
		case completed[s]:
			badges = append(badges, completedBadge.Render(fmt.Sprintf("✓%d", s)))
		case s == p.CurrentStep:
			badges = append(badges, currentBadge.Render(fmt.Sprintf("[%d]", s)))
		default:
			badges = append(badges, pendingBadge.Render(fmt.Sprintf(" %d ", s)))
		}
	}
	line := strings.Join(badges, " ")
	if m.confirmReset || m.session.Notice() != "" {
		return line
	}
	return line + "\n" + footerStyle.Render(m.help.View(m.keys))
}

func pathLabel(p model.Path) string {
	if p == model.PathNone {
		return "none"
	}
	return string(p)
}

func countKind(marks []model.SentenceMark, kind model.MarkKind) int {
	n := 0
	for _, mk := range marks {
		if mk.Kind == kind {
			n++
		}
	}
	return n
}
