package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trigator.klederson.com/internal/config"
	"trigator.klederson.com/internal/survey"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, source string, phase survey.Phase) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"1-3", "select"},
		{"M", "easure"},
		{"C", "alc"},
		{"R", "eset"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := PhaseStyle(phase).Render(phase.String())
	sourceInfo := StyleMenuLabel.Render(fmt.Sprintf("Source: %s", source))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + sourceInfo + " "

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right) // bar padding
	if gap < 0 {
		gap = 0
	}
	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// PhaseStyle picks the style showing a round phase.
func PhaseStyle(p survey.Phase) lipgloss.Style {
	switch p {
	case survey.PhaseSampling:
		return StylePhaseBusy
	case survey.PhaseSolveFailed:
		return StylePhaseFailed
	default:
		return StylePhaseActive
	}
}
