package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"trigator.klederson.com/internal/survey"
	"trigator.klederson.com/internal/trilat"
)

// Detail is the content of the detail panel.
type Detail struct {
	Index      int // survey.NoAnchor when nothing is selected
	Anchor     trilat.AnchorPoint
	Exponent   float64
	History    []float64 // raw received powers, oldest first
	Sampling   bool
	Iteration  int
	Count      int
	MeasuredAt time.Time
	Solution   *trilat.Solution
	SolveErr   error
}

type field struct{ label, value string }

// RenderDetailPanel renders the selected anchor and the current estimate.
func RenderDetailPanel(d Detail, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))

	var lines []string
	if d.Index == survey.NoAnchor {
		lines = append(lines,
			StylePanelTitle.Render("DETAIL"), sep, "",
			StyleHelp.Render(" Select an anchor with 1-3 or tab,"),
			StyleHelp.Render(" stand on it and press enter."))
	} else {
		lines = append(lines, StylePanelTitle.Render(fmt.Sprintf("ANCHOR %d", d.Index+1)), sep)

		fields := []field{
			{"Position", trilat.Location{X: d.Anchor.X, Y: d.Anchor.Y}.String()},
		}
		m := d.Anchor.Measurement
		if m.Complete() {
			fields = append(fields,
				field{"Tx", fmt.Sprintf("%.1f dBm", *m.TxPowerDBm)},
				field{"Rx", fmt.Sprintf("%.1f dBm", *m.RxPowerDBm)})
			if dist, err := trilat.Distance(*m, d.Exponent); err == nil {
				fields = append(fields, field{"Distance", fmt.Sprintf("~%.2fm", dist)})
			}
			if d.Solution != nil {
				fields = append(fields, field{"Residual", fmt.Sprintf("%+.2fm", d.Solution.Residuals[d.Index])})
			}
			if !d.MeasuredAt.IsZero() {
				fields = append(fields, field{"Measured", humanize.Time(d.MeasuredAt)})
			}
		} else {
			fields = append(fields, field{"Measured", "no"})
		}

		for _, f := range fields {
			lines = append(lines, labelSty.Render(fmt.Sprintf("  %-10s", f.label))+valSty.Render(f.value))
		}

		if d.Sampling {
			lines = append(lines, "", labelSty.Render("  Sampling ")+
				renderProgressBar(d.Iteration, d.Count, max(innerW-24, 10))+
				valSty.Render(fmt.Sprintf(" %d/%d", d.Iteration, d.Count)))
		}

		if len(d.History) > 0 {
			last := d.History[len(d.History)-1]
			barWidth := max(innerW-22, 10)
			lines = append(lines, "",
				labelSty.Render("  Signal ")+renderSignalBar(last, barWidth)+valSty.Render(fmt.Sprintf(" %ddBm", int(math.Round(last)))),
				labelSty.Render("  Rx History:"),
				"  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(d.History, max(innerW-4, 10))))
		}
	}

	lines = append(lines, "", StylePanelTitle.Render("ESTIMATE"), sep)
	switch {
	case d.Solution != nil:
		lines = append(lines, labelSty.Render(fmt.Sprintf("  %-10s", "Location"))+StyleEstimate.Render(d.Solution.Location.String()))
	case d.SolveErr != nil:
		lines = append(lines, StyleStatusError.Render("  "+truncate(d.SolveErr.Error(), innerW-2)))
	default:
		lines = append(lines, StyleHelp.Render("  Measure all three anchors, then press c."))
	}

	innerH := max(height-2, 1)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	return StylePanelActive.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

func renderProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := min(done*width/total, width)
	return StyleHelp.Render("[") +
		StylePhaseBusy.Render(strings.Repeat("|", filled)) +
		lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled)) +
		StyleHelp.Render("]")
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := (rssi + 100.0) / 70.0
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(lipgloss.Color(proximityColor(rssi))).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func proximityColor(rssi float64) string {
	if rssi > -50 {
		return "#00FF41"
	}
	if rssi > -60 {
		return "#00CC33"
	}
	if rssi > -70 {
		return "#00AA22"
	}
	if rssi > -80 {
		return "#008F11"
	}
	return "#005511"
}
