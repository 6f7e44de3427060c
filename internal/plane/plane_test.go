package plane

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trigator.klederson.com/internal/survey"
	"trigator.klederson.com/internal/trilat"
)

func anchorLocations() []trilat.Location {
	var out []trilat.Location
	for _, a := range trilat.DefaultAnchors() {
		out = append(out, trilat.Location{X: a.X, Y: a.Y})
	}
	return out
}

func TestFitKeepsPointsInside(t *testing.T) {
	v := Fit(anchorLocations(), 41, 21)

	for _, p := range anchorLocations() {
		col, row, ok := v.Cell(p)
		assert.True(t, ok, "point %v mapped to (%d,%d)", p, col, row)
		assert.GreaterOrEqual(t, col, 1)
		assert.Less(t, col, 40)
		assert.GreaterOrEqual(t, row, 1)
		assert.Less(t, row, 20)
	}
}

func TestCellYGrowsUpwards(t *testing.T) {
	v := Fit(anchorLocations(), 41, 21)

	c1, r1, _ := v.Cell(trilat.Location{X: 0, Y: 0})
	c2, r2, _ := v.Cell(trilat.Location{X: 100, Y: 0})
	c3, r3, _ := v.Cell(trilat.Location{X: 50, Y: 86})

	assert.Equal(t, r1, r2)
	assert.Less(t, r3, r1)
	assert.Less(t, c1, c3)
	assert.Less(t, c3, c2)
}

func TestPointInvertsCell(t *testing.T) {
	v := Fit(anchorLocations(), 61, 25)
	col, row, ok := v.Cell(trilat.Location{X: 50, Y: 86})
	require.True(t, ok)

	p := v.Point(col, row)
	assert.InDelta(t, 50, p.X, v.Scale)
	assert.InDelta(t, 86, p.Y, v.Scale/0.5)
}

func TestFitDegenerate(t *testing.T) {
	v := Fit([]trilat.Location{{X: 5, Y: 5}, {X: 5, Y: 5}}, 20, 10)
	assert.Equal(t, 1.0, v.Scale)
	_, _, ok := v.Cell(trilat.Location{X: 5, Y: 5})
	assert.True(t, ok)
}

func TestLine(t *testing.T) {
	cells := Line(0, 0, 4, 2)
	require.NotEmpty(t, cells)
	assert.Equal(t, cell{0, 0}, cells[0])
	assert.Equal(t, cell{4, 2}, cells[len(cells)-1])
	assert.Len(t, cells, 5)

	assert.Equal(t, []cell{{3, 3}}, Line(3, 3, 3, 3))
}

func TestEdgeChar(t *testing.T) {
	tests := []struct {
		dCol, dRow int
		want       rune
	}{
		{10, 0, '-'},
		{-10, 0, '-'},
		{0, 5, '|'},
		{5, -5, '/'},
		{-5, 5, '/'},
		{5, 5, '\\'},
		{0, 0, '.'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(EdgeChar(tt.dCol, tt.dRow)), "(%d,%d)", tt.dCol, tt.dRow)
	}
}

func TestRender(t *testing.T) {
	r := survey.NewRound(trilat.DefaultAnchors())
	for i, rx := range []float64{-40, -42, -44} {
		require.NoError(t, r.BeginSampling(i))
		require.NoError(t, r.FinishSampling(i, trilat.NewMeasurement(5, rx), nil))
	}
	_, err := r.Solve(2.5)
	require.NoError(t, err)

	scene := NewScene(r, 2.5)
	require.NotNil(t, scene.Estimate)
	for _, d := range scene.Ranges {
		assert.Greater(t, d, 0.0)
	}

	out := Render(60, 20, scene)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 20)
	for _, l := range lines {
		assert.Equal(t, 60, lipgloss.Width(l))
	}
	for _, s := range []string{"1", "2", "3", "X"} {
		assert.Contains(t, out, s)
	}
}

func TestRenderTooSmall(t *testing.T) {
	assert.Empty(t, Render(5, 3, Scene{Anchors: trilat.DefaultAnchors()}))
}
