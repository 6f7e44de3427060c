package plane

import (
	"math"

	"trigator.klederson.com/internal/config"
	"trigator.klederson.com/internal/trilat"
)

// Viewport maps world coordinates onto a grid of terminal cells. World Y grows
// upwards, rows grow downwards.
type Viewport struct {
	Width, Height int
	MinX, MinY    float64
	Scale         float64 // world units per column
	offCol        int
	offRow        int
}

// Fit returns a viewport of width x height cells showing all points with a
// one-cell margin, keeping world distances round on screen.
func Fit(points []trilat.Location, width, height int) Viewport {
	v := Viewport{Width: width, Height: height, Scale: 1}
	if len(points) == 0 || width < 3 || height < 3 {
		return v
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	spanX := maxX - minX
	spanY := maxY - minY
	usableW := float64(width - 3)
	usableH := float64(height - 3)

	// A row is 1/aspect columns tall, so it covers Scale/aspect world units.
	scale := math.Max(spanX/usableW, spanY*config.PlaneAspectRatio/usableH)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	v.Scale = scale
	v.MinX = minX
	v.MinY = minY

	// Center the content.
	usedCols := int(math.Round(spanX / scale))
	usedRows := int(math.Round(spanY * config.PlaneAspectRatio / scale))
	v.offCol = (width - 1 - usedCols) / 2
	v.offRow = (height - 1 - usedRows) / 2
	return v
}

// rowScale is the world height covered by one row.
func (v Viewport) rowScale() float64 {
	return v.Scale / config.PlaneAspectRatio
}

// Cell returns the cell holding p and whether it lies inside the viewport.
func (v Viewport) Cell(p trilat.Location) (col, row int, ok bool) {
	col = v.offCol + int(math.Round((p.X-v.MinX)/v.Scale))
	row = v.Height - 1 - v.offRow - int(math.Round((p.Y-v.MinY)/v.rowScale()))
	return col, row, v.Contains(col, row)
}

// Point returns the world position of the center of a cell.
func (v Viewport) Point(col, row int) trilat.Location {
	return trilat.Location{
		X: v.MinX + float64(col-v.offCol)*v.Scale,
		Y: v.MinY + float64(v.Height-1-v.offRow-row)*v.rowScale(),
	}
}

// Contains reports whether a cell lies within the viewport.
func (v Viewport) Contains(col, row int) bool {
	return col >= 0 && col < v.Width && row >= 0 && row < v.Height
}

type cell struct{ col, row int }

// Line returns the cells between two cells, both ends included.
func Line(c0, r0, c1, r1 int) []cell {
	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}

	cells := make([]cell, 0, max(dc, -dr)+1)
	e := dc + dr
	for {
		cells = append(cells, cell{c0, r0})
		if c0 == c1 && r0 == r1 {
			return cells
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// EdgeChar returns the character drawing a segment running dCol columns and
// dRow rows.
func EdgeChar(dCol, dRow int) rune {
	if dCol == 0 && dRow == 0 {
		return '.'
	}
	angle := math.Atan2(float64(-dRow), float64(dCol)) // screen angle, 0=east
	if angle < 0 {
		angle += math.Pi
	}

	// 4 sectors of 45 degrees centred on each direction
	sector := int(math.Round(angle/(math.Pi/4))) % 4
	switch sector {
	case 0:
		return '-'
	case 1:
		return '/'
	case 2:
		return '|'
	default:
		return '\\'
	}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
