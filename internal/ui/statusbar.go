package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trigator.klederson.com/internal/survey"
)

// Status is what the bottom bar reports.
type Status struct {
	Phase    survey.Phase
	Measured int
	Exponent float64
	Count    int
	Interval time.Duration
	Run      time.Duration // expected length of one sampling run
	Message  string
	IsError  bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	phase := PhaseStyle(st.Phase).Render("[" + st.Phase.String() + "]")

	info := fmt.Sprintf(" Anchors: %d/3  n=%.1f  Samples: %d x %s (%s)",
		st.Measured, st.Exponent, st.Count, st.Interval, FormatDuration(st.Run))

	content := phase + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if st.Message != "" {
		msgStyle := StyleStatusBar.Foreground(ColorGreen)
		if st.IsError {
			msgStyle = StyleStatusBar.Foreground(ColorError)
		}
		room := width - lipgloss.Width(content) - 7
		if room > 8 {
			content += msgStyle.Render(" | " + truncate(st.Message, room))
		}
	}

	gap := width - 2 - lipgloss.Width(content) // bar padding
	if gap < 0 {
		gap = 0
	}
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}

// FormatDuration renders short durations the way the bars show them.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return humanize.FtoaWithDigits(d.Seconds(), 1) + "s"
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-3]) + "..."
}
