package tui

import (
	"fmt"
	"strings"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/preset"
)

// rect is one display placed in the virtual desktop.
type rect struct {
	X, Y, Width, Height int
	Label               string
}

func presetRects(displays []ipc.DisplayInfo) []rect {
	rects := make([]rect, 0, len(displays))
	for i, d := range displays {
		rects = append(rects, rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height, Label: fmt.Sprintf("%d", i+1)})
	}
	return rects
}

func monitorRects(monitors []ipc.MonitorInfo) []rect {
	rects := make([]rect, 0, len(monitors))
	for _, m := range monitors {
		rects = append(rects, rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height, Label: fmt.Sprintf("%d", m.Number)})
	}
	return rects
}

// summarizePreset describes the displays of a preset one per line.
func summarizePreset(displays []ipc.DisplayInfo) []string {
	lines := make([]string, 0, len(displays))
	for i, d := range displays {
		lines = append(lines, fmt.Sprintf("%d  %-12s %5dx%-5d at (%d, %d)  %s",
			i+1, d.Display, d.Width, d.Height, d.X, d.Y, preset.Orientation(d.Orientation)))
	}
	return lines
}

// renderLayoutPreview draws the displays scaled into a width x height box.
func renderLayoutPreview(rects []rect, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	drawBorder(canvas, width, height)

	minX, minY, maxX, maxY, ok := extent(rects)
	if ok {
		spanW, spanH := maxX-minX, maxY-minY
		innerW, innerH := width-2, height-2
		for _, r := range rects {
			if r.Width <= 0 || r.Height <= 0 {
				continue
			}
			x1 := 1 + (r.X-minX)*(innerW-1)/spanW
			y1 := 1 + (r.Y-minY)*(innerH-1)/spanH
			x2 := 1 + (r.X+r.Width-minX)*(innerW-1)/spanW
			y2 := 1 + (r.Y+r.Height-minY)*(innerH-1)/spanH
			drawDisplay(canvas, x1, y1, x2, y2, r.Label)
		}
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func extent(rects []rect) (minX, minY, maxX, maxY int, ok bool) {
	for _, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		if !ok {
			minX, minY, maxX, maxY = r.X, r.Y, r.X+r.Width, r.Y+r.Height
			ok = true
			continue
		}
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.X+r.Width)
		maxY = max(maxY, r.Y+r.Height)
	}
	return minX, minY, maxX, maxY, ok
}

func drawDisplay(canvas [][]rune, x1, y1, x2, y2 int, label string) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])

	// Clamp to the area inside the border.
	x1, y1 = max(x1, 1), max(y1, 1)
	x2, y2 = min(x2, canvasW-2), min(y2, canvasH-2)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
