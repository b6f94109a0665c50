package mapsurface

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// dots holds one braille cell mask per terminal cell plus the colour of the
// last layer that drew into it.
type dots struct {
	w, h  int
	mask  [][]uint8
	color [][]string
	pen   string
}

func newDots(w, h int) *dots {
	d := &dots{w: w, h: h, mask: make([][]uint8, h), color: make([][]string, h)}
	for i := range d.mask {
		d.mask[i] = make([]uint8, w)
		d.color[i] = make([]string, w)
	}
	return d
}

// dot bits for the left and right column, top to bottom
var (
	leftBits  = [4]uint8{0x01, 0x02, 0x04, 0x40}
	rightBits = [4]uint8{0x08, 0x10, 0x20, 0x80}
)

// set lights a dot at micro coordinates (2x4 per cell).
func (d *dots) set(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= d.w || cy >= d.h {
		return
	}
	if mx%2 == 0 {
		d.mask[cy][cx] |= leftBits[my%4]
	} else {
		d.mask[cy][cx] |= rightBits[my%4]
	}
	d.color[cy][cx] = d.pen
}

// line draws between two micro points with Bresenham.
func (d *dots) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		d.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lines renders each row, grouping runs of equal colour into one style.
func (d *dots) lines() []string {
	out := make([]string, d.h)
	for y := range d.h {
		var b strings.Builder
		run, runColor := []rune{}, ""
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(string(run)))
			}
			run = run[:0]
		}
		for x := range d.w {
			r, col := ' ', ""
			if m := d.mask[y][x]; m != 0 {
				r, col = rune(0x2800+int(m)), d.color[y][x]
			}
			if col != runColor {
				flush()
				runColor = col
			}
			run = append(run, r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
