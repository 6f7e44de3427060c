package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trigator.klederson.com/internal/trilat"
)

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

var samplingRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorWarning).
	Bold(true)

// AnchorListHeight is the height the anchor list needs for all three entries.
const AnchorListHeight = 2 + 2 + 3*anchorEntryLines

const anchorEntryLines = 3

// RenderAnchorList renders the three anchors with their measurements.
func RenderAnchorList(anchors [3]trilat.AnchorPoint, selected, sampling int, n float64, width int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	measured := 0
	for i := range anchors {
		if anchors[i].Measured() {
			measured++
		}
	}

	title := StylePanelTitle.Render(fmt.Sprintf("ANCHORS [%d/3]", measured))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	lines := []string{title, separator}

	for i := range anchors {
		lines = append(lines, renderAnchorEntry(i, anchors[i], n, innerW, i == selected, i == sampling)...)
	}

	content := strings.Join(lines, "\n")
	return StylePanelBorder.Width(width - 2).Height(AnchorListHeight - 2).Render(content)
}

func renderAnchorEntry(i int, a trilat.AnchorPoint, n float64, maxW int, isCursor, isSampling bool) []string {
	check := "[ ]"
	if a.Measured() {
		check = "[x]"
	}

	cursor := "  "
	if isCursor {
		cursor = ">>"
	}
	if isSampling {
		cursor = ".."
	}

	name := fmt.Sprintf("Anchor %d", i+1)
	coord := fmt.Sprintf("(%.1f, %.1f)", a.X, a.Y)

	power := "not measured"
	dist := ""
	if a.Measured() {
		power = fmt.Sprintf("tx %.1f  rx %.1f dBm", *a.Measurement.TxPowerDBm, *a.Measurement.RxPowerDBm)
		if d, err := trilat.Distance(*a.Measurement, n); err == nil {
			dist = fmt.Sprintf("~%.1fm", d)
		}
	}

	rawLine1 := fmt.Sprintf("%s %s %s %s", cursor, check, name, coord)
	rawLine2 := fmt.Sprintf("       %s", power)
	rawLine3 := fmt.Sprintf("       %s", dist)

	// Truncate to maxW to prevent line wrapping inside the panel
	rawLine1 = truncRaw(rawLine1, maxW)
	rawLine2 = truncRaw(rawLine2, maxW)
	rawLine3 = truncRaw(rawLine3, maxW)

	if isSampling {
		return []string{samplingRowSty.Render(rawLine1), StylePhaseBusy.Render(rawLine2), rawLine3}
	}
	if isCursor {
		return []string{cursorRowSty.Render(rawLine1), cursorRowSty.Render(rawLine2), cursorRowSty.Render(rawLine3)}
	}

	checkSty := StyleUnmeasured
	powerSty := StyleUnmeasured
	if a.Measured() {
		checkSty = StyleMeasured
		powerSty = StyleAnchorPower
	}
	line1 := fmt.Sprintf("   %s %s %s", checkSty.Render(check), StyleAnchorName.Render(name), StyleAnchorCoord.Render(coord))
	line2 := "       " + powerSty.Render(power)
	line3 := "       " + StyleAnchorDist.Render(dist)
	return []string{line1, line2, line3}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
