package timer

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ID names a countdown inside a screen.
type ID string

// TickMsg reports one elapsed second for a countdown generation.
type TickMsg struct {
	ID  ID
	Gen int
}

// Schedule returns a command that delivers a TickMsg after one second.
func Schedule(id ID, gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{ID: id, Gen: gen}
	})
}

// Scheduler keeps exactly one outstanding tick per running countdown
// generation.
type Scheduler struct {
	pending map[ID]int
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: map[ID]int{}}
}

// Delivered clears the pending entry for msg. It reports whether msg belongs
// to the generation that was scheduled last.
func (s *Scheduler) Delivered(msg TickMsg) bool {
	gen, ok := s.pending[msg.ID]
	if !ok || gen != msg.Gen {
		return false
	}
	delete(s.pending, msg.ID)
	return true
}

// Sync schedules ticks for running countdowns whose current generation has no
// outstanding tick yet.
func (s *Scheduler) Sync(countdowns map[ID]*Countdown) tea.Cmd {
	var cmds []tea.Cmd
	for id, c := range countdowns {
		if c == nil || !c.Running() {
			continue
		}
		if gen, ok := s.pending[id]; ok && gen == c.Gen() {
			continue
		}
		s.pending[id] = c.Gen()
		cmds = append(cmds, Schedule(id, c.Gen()))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
