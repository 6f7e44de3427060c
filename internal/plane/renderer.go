// Package plane draws the anchor triangle, the range circles and the position
// estimate onto a character grid.
package plane

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trigator.klederson.com/internal/survey"
	"trigator.klederson.com/internal/trilat"
)

var (
	colorBright   = lipgloss.Color("#00FF41")
	colorMid      = lipgloss.Color("#008F11")
	colorDim      = lipgloss.Color("#004A0A")
	colorMeasured = lipgloss.Color("#00FFAA")
	colorSampling = lipgloss.Color("#FFAA00")
	colorEstimate = lipgloss.Color("#FFCC00")

	styleEdge     = lipgloss.NewStyle().Foreground(colorMid)
	styleRange    = lipgloss.NewStyle().Foreground(colorDim)
	styleAnchor   = lipgloss.NewStyle().Foreground(colorMid).Bold(true)
	styleMeasured = lipgloss.NewStyle().Foreground(colorMeasured).Bold(true)
	styleSampling = lipgloss.NewStyle().Foreground(colorSampling).Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(colorBright).Bold(true)
	styleEstimate = lipgloss.NewStyle().Foreground(colorEstimate).Bold(true)
	styleCoord    = lipgloss.NewStyle().Foreground(colorMid)
	styleLegend   = lipgloss.NewStyle().Foreground(colorMid)
)

// Scene is everything the plane shows for one frame.
type Scene struct {
	Anchors  [3]trilat.AnchorPoint
	Selected int        // survey.NoAnchor if none
	Sampling int        // survey.NoAnchor if none
	Ranges   [3]float64 // estimated distance per anchor, 0 to hide
	Estimate *trilat.Location
}

type layer int

const (
	layerEmpty layer = iota
	layerRange
	layerEdge
	layerCoord
	layerEstimate
	layerAnchor
)

type glyph struct {
	ch    rune
	layer layer
	style lipgloss.Style
}

type canvas struct {
	w, h  int
	cells []glyph
}

func newCanvas(w, h int) *canvas {
	return &canvas{w: w, h: h, cells: make([]glyph, w*h)}
}

// set draws ch unless a higher layer already owns the cell.
func (c *canvas) set(col, row int, ch rune, l layer, style lipgloss.Style) {
	if col < 0 || col >= c.w || row < 0 || row >= c.h {
		return
	}
	g := &c.cells[row*c.w+col]
	if g.layer > l {
		return
	}
	*g = glyph{ch: ch, layer: l, style: style}
}

func (c *canvas) text(col, row int, s string, l layer, style lipgloss.Style) {
	for i, ch := range s {
		c.set(col+i, row, ch, l, style)
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.h; row++ {
		for col := 0; col < c.w; col++ {
			g := c.cells[row*c.w+col]
			if g.layer == layerEmpty {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(g.style.Render(string(g.ch)))
		}
		if row < c.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Render produces the plane display as a styled string of exactly height lines.
func Render(width, height int, s Scene) string {
	if width < 10 || height < 5 {
		return ""
	}

	points := make([]trilat.Location, 0, 4)
	for _, a := range s.Anchors {
		points = append(points, trilat.Location{X: a.X, Y: a.Y})
	}
	if s.Estimate != nil && finite(*s.Estimate) {
		points = append(points, *s.Estimate)
	}
	v := Fit(points, width, height)
	c := newCanvas(width, height)

	drawRanges(c, v, s)

	// Triangle
	for i := range s.Anchors {
		a := s.Anchors[i]
		b := s.Anchors[(i+1)%3]
		c0, r0, _ := v.Cell(trilat.Location{X: a.X, Y: a.Y})
		c1, r1, _ := v.Cell(trilat.Location{X: b.X, Y: b.Y})
		ch := EdgeChar(c1-c0, r1-r0)
		for _, p := range Line(c0, r0, c1, r1) {
			c.set(p.col, p.row, ch, layerEdge, styleEdge)
		}
	}

	for i, a := range s.Anchors {
		col, row, _ := v.Cell(trilat.Location{X: a.X, Y: a.Y})
		c.set(col, row, rune('1'+i), layerAnchor, anchorStyle(s, i))

		coord := fmt.Sprintf("(%.0f,%.0f)", a.X, a.Y)
		labelCol := col + 2
		if labelCol+len(coord) > width {
			labelCol = col - len(coord) - 1
		}
		c.text(max(labelCol, 0), row, coord, layerCoord, styleCoord)
	}

	if s.Estimate != nil && finite(*s.Estimate) {
		col, row, _ := v.Cell(*s.Estimate)
		c.set(col, row, 'X', layerEstimate, styleEstimate)
	}

	return c.String()
}

// drawRanges marks the cells lying on each anchor's range circle.
func drawRanges(c *canvas, v Viewport, s Scene) {
	tolerance := v.Scale * 0.6
	for row := 0; row < c.h; row++ {
		for col := 0; col < c.w; col++ {
			p := v.Point(col, row)
			for i, a := range s.Anchors {
				r := s.Ranges[i]
				if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
					continue
				}
				d := math.Hypot(p.X-a.X, p.Y-a.Y)
				if math.Abs(d-r) < tolerance {
					c.set(col, row, '.', layerRange, styleRange)
					break
				}
			}
		}
	}
}

func anchorStyle(s Scene, i int) lipgloss.Style {
	switch {
	case s.Sampling == i:
		return styleSampling
	case s.Selected == i:
		return styleSelected
	case s.Anchors[i].Measured():
		return styleMeasured
	default:
		return styleAnchor
	}
}

func finite(l trilat.Location) bool {
	return !math.IsNaN(l.X) && !math.IsInf(l.X, 0) && !math.IsNaN(l.Y) && !math.IsInf(l.Y, 0)
}

// RenderLegend produces the plane legend line.
func RenderLegend(width int) string {
	legend := styleMeasured.Render("1-3 measured") + "  " +
		styleSampling.Render("sampling") + "  " +
		styleEstimate.Render("X estimate") + "  " +
		styleLegend.Render(". range")

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}

// NewScene builds the scene for a round.
func NewScene(r *survey.Round, n float64) Scene {
	s := Scene{
		Anchors:  r.Anchors(),
		Selected: r.Selected(),
		Sampling: r.Sampling(),
	}
	for i := range s.Anchors {
		if m := s.Anchors[i].Measurement; m.Complete() {
			if d, err := trilat.Distance(*m, n); err == nil {
				s.Ranges[i] = d
			}
		}
	}
	if sol, ok := r.Solution(); ok {
		loc := sol.Location
		s.Estimate = &loc
	}
	return s
}
