package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	tableColumnsWidth   = 40
	minTrendWidth       = 8
)

// TerminalWidth returns the width of stdout, or a fallback when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// TrendWidthFor returns how many sparkline cells fit next to the step table.
func TrendWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	return max(totalWidth-tableColumnsWidth, minTrendWidth)
}
