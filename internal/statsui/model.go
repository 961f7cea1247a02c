// Package statsui provides the Bubble Tea history interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/stats"
	"github.com/verte-zerg/tuiread/internal/store"
)

const (
	tabOverview = iota
	tabSteps
	tabEvents
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history UI.
type Model struct {
	store  *store.Store
	cfg    model.HistoryConfig
	window int

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode  bool
	lastInput   textinput.Model
	filterError string
}

// NewModel constructs a history UI model.
func NewModel(st *store.Store, cfg model.HistoryConfig, window int) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		window:   max(window, 1),
		tabs:     []string{"Overview", "Steps", "Events"},
		overview: viewport.New(0, 0),
	}
	steps := table.New(table.WithColumns(stepColumns()), table.WithStyles(tableStyles()))
	events := table.New(table.WithColumns(eventColumns()), table.WithStyles(tableStyles()))
	m.tables = map[int]*table.Model{tabSteps: &steps, tabEvents: &events}
	m.lastInput = textinput.New()
	m.lastInput.Prompt = "Last: "
	m.lastInput.Placeholder = "all"
	m.lastInput.Cursor.SetMode(cursor.CursorBlink)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.window++
			m.renderOverview()
			return m, nil
		case "-":
			m.window = max(m.window-1, 1)
			m.renderOverview()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if t, ok := m.tables[m.activeTab]; ok {
			*t, cmd = t.Update(msg)
			return m, cmd
		}
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		// One line for the header row and one for its border.
		t.SetHeight(max(bodyHeight-2, 1))
	}
	m.lastInput.Width = max(10, m.width-lipgloss.Width(m.lastInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	for idx, t := range m.tables {
		if idx == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSteps].SetRows(stepRows(report.Steps))
	m.tables[tabEvents].SetRows(eventRows(report.Records))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	if len(m.report.Records) == 0 {
		m.overview.SetContent("No history found.")
		return
	}
	var b strings.Builder
	b.WriteString(renderSummaryCards(m.report, width))
	b.WriteString("\n\n")
	trendWidth := stats.TrendWidthFor(width)
	for _, agg := range m.report.Steps {
		durations := stats.MovingAverage(stats.StepDurations(m.report.Records, agg.Step), m.window)
		if len(durations) > trendWidth {
			durations = durations[len(durations)-trendWidth:]
		}
		fmt.Fprintf(&b, "Step %d  %s  %s\n", agg.Step, stats.FormatSeconds(agg.AvgSeconds), stats.Sparkline(durations))
	}
	m.overview.SetContent(strings.TrimRight(b.String(), "\n"))
}

func renderSummaryCards(r stats.Report, width int) string {
	finished := 0
	var total time.Duration
	for _, rec := range r.Records {
		total += rec.Duration()
		if rec.Step == model.TrainingSteps {
			finished++
		}
	}
	cards := []string{
		metricCard("Runs", strconv.Itoa(r.Runs)),
		metricCard("Finished", strconv.Itoa(finished)),
		metricCard("Steps done", strconv.Itoa(len(r.Records))),
		metricCard("Time trained", stats.FormatSeconds(total.Seconds())),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func stepColumns() []table.Column {
	return []table.Column{
		{Title: "Step", Width: 4},
		{Title: "Done", Width: 5},
		{Title: "Avg", Width: 7},
		{Title: "Best", Width: 7},
		{Title: "Cycles", Width: 7},
		{Title: "Failures", Width: 8},
	}
}

func stepRows(aggs []model.StepAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{
			strconv.Itoa(agg.Step),
			strconv.Itoa(agg.Completions),
			stats.FormatSeconds(agg.AvgSeconds),
			stats.FormatSeconds(agg.BestSeconds),
			strconv.Itoa(agg.TotalCycles),
			strconv.Itoa(agg.TotalFailures),
		})
	}
	return rows
}

func eventColumns() []table.Column {
	return []table.Column{
		{Title: "Finished", Width: 16},
		{Title: "Run", Width: 8},
		{Title: "Step", Width: 4},
		{Title: "Path", Width: 4},
		{Title: "Took", Width: 7},
		{Title: "Cycles", Width: 6},
		{Title: "Failures", Width: 8},
	}
}

// eventRows lists the newest completion first.
func eventRows(records []model.StepRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		run := rec.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		path := string(rec.Path)
		if path == "" {
			path = "-"
		}
		rows = append(rows, table.Row{
			rec.EndedAt.Local().Format("2006-01-02 15:04"),
			run,
			strconv.Itoa(rec.Step),
			path,
			stats.FormatSeconds(rec.Duration().Seconds()),
			strconv.Itoa(rec.Cycles),
			strconv.Itoa(rec.Failures),
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := truncateLine(fmt.Sprintf("Settings: last=%s  window=%d", last, m.window), m.width)
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)", m.lastInput.View()}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if t, ok := m.tables[m.activeTab]; ok {
		if len(m.report.Records) == 0 {
			return "No history found."
		}
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel  ctrl+c: quit")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.lastInput.SetValue("")
	if m.cfg.Last > 0 {
		m.lastInput.SetValue(strconv.Itoa(m.cfg.Last))
	}
	return m, m.lastInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		m.lastInput.Blur()
		return m, nil
	case tea.KeyEnter:
		last, err := parseLast(m.lastInput.Value())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg.Last = last
		m.filterMode = false
		m.filterError = ""
		m.lastInput.Blur()
		m.refreshReport()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.lastInput, cmd = m.lastInput.Update(msg)
	return m, cmd
}

func parseLast(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid last value (use 0 or positive integer)")
	}
	return n, nil
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
