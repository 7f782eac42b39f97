package viz

import (
	"math"
	"strings"
)

// dotBits maps a sub-pixel (row, col) inside a braille cell to its bit.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille plotting area addressed in data coordinates. Each
// character cell holds 2x4 dots.
type Canvas struct {
	cols, rows int
	cells      []uint8
	xmin, xmax float64
	ymin, ymax float64
}

// NewCanvas covers [xmin,xmax]×[ymin,ymax] with cols×rows cells. Empty
// ranges are widened by one unit.
func NewCanvas(cols, rows int, xmin, xmax, ymin, ymax float64) *Canvas {
	if xmax <= xmin {
		xmax = xmin + 1
	}
	if ymax <= ymin {
		ymax = ymin + 1
	}
	return &Canvas{
		cols:  cols,
		rows:  rows,
		cells: make([]uint8, cols*rows),
		xmin:  xmin,
		xmax:  xmax,
		ymin:  ymin,
		ymax:  ymax,
	}
}

// dot maps a data point onto the sub-pixel grid. Row 0 is the top.
func (c *Canvas) dot(x, y float64) (int, int) {
	w, h := float64(c.cols*2-1), float64(c.rows*4-1)
	px := math.Round((x - c.xmin) / (c.xmax - c.xmin) * w)
	py := math.Round((c.ymax - y) / (c.ymax - c.ymin) * h)
	return int(px), int(py)
}

func (c *Canvas) setDot(px, py int) {
	if px < 0 || py < 0 || px >= c.cols*2 || py >= c.rows*4 {
		return
	}
	c.cells[(py/4)*c.cols+px/2] |= dotBits[py%4][px%2]
}

// Point marks (x, y). Points outside the range and non-finite values
// are dropped.
func (c *Canvas) Point(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	c.setDot(c.dot(x, y))
}

// Marker marks a 2x2 dot block anchored at (x, y).
func (c *Canvas) Marker(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	px, py := c.dot(x, y)
	for _, d := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		c.setDot(px+d[0], py+d[1])
	}
}

// Segment joins two data points with one dot per sub-pixel step along
// the longer axis.
func (c *Canvas) Segment(x0, y0, x1, y1 float64) {
	if !finite(x0) || !finite(y0) || !finite(x1) || !finite(y1) {
		return
	}
	ax, ay := c.dot(x0, y0)
	bx, by := c.dot(x1, y1)
	n := max(abs(bx-ax), abs(by-ay))
	if n == 0 {
		c.setDot(ax, ay)
		return
	}
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		px := ax + int(math.Round(f*float64(bx-ax)))
		py := ay + int(math.Round(f*float64(by-ay)))
		c.setDot(px, py)
	}
}

// Polyline draws consecutive segments, breaking at non-finite values.
func (c *Canvas) Polyline(xs, ys []float64) {
	for i := 1; i < len(xs) && i < len(ys); i++ {
		c.Segment(xs[i-1], ys[i-1], xs[i], ys[i])
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for r := 0; r < c.rows; r++ {
		for _, bits := range c.cells[r*c.cols : (r+1)*c.cols] {
			b.WriteRune(rune(0x2800) + rune(bits))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
