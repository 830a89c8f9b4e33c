// Package markup renders the drawing directives understood by the status2d
// bar of dwm: colour switches, cursor moves and filled rectangles.
package markup

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// CanvasHeight is the pixel height of the window manager's bar.
const CanvasHeight = 15

// Fg switches the foreground (drawing) colour.
func Fg(color string) string {
	return "^c" + color + "^"
}

// Bg switches the background colour.
func Bg(color string) string {
	return "^a" + color + "^"
}

// Rect draws a filled rectangle at an offset from the current cursor. The
// cursor does not move.
func Rect(x, y, w, h int) string {
	return fmt.Sprintf("^r%d,%d,%d,%d^", x, y, w, h)
}

// Forward moves the cursor by n pixels; negative values move it back.
func Forward(n int) string {
	return fmt.Sprintf("^f%d^", n)
}

// Clamp limits percent to [0,100].
func Clamp(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	}
	return percent
}

// centerY returns the top offset that vertically centres a box of height h.
func centerY(h int) int {
	return (CanvasHeight - h) / 2
}

// VBar renders a bottom-up bar of w×h pixels. The background layer covers the
// whole box and the foreground layer covers percent*h/100 pixels from the
// bottom. An empty colour omits that layer, so a foreground-only VBar can be
// drawn over a previous bar.
func VBar(percent, w, h int, fg, bg string) string {
	percent = Clamp(percent)
	barHeight := percent * h / 100
	y := centerY(h)

	var b strings.Builder
	if bg != "" {
		b.WriteString(Fg(bg))
		b.WriteString(Rect(0, y, w, h))
	}
	if fg != "" {
		b.WriteString(Fg(fg))
		b.WriteString(Rect(0, y+h-barHeight, w, barHeight))
	}
	return b.String()
}

// VBarBordered draws a border box of colour border with a VBar inset by one
// pixel on every side. The cursor is left where it started.
func VBarBordered(percent, w, h int, fg, bg, border string) string {
	return Fg(border) + Rect(0, centerY(h), w, h) +
		Forward(1) + VBar(percent, w-2, h-2, fg, bg) + Forward(-1)
}

// HBar renders a left-to-right bar of w×h pixels.
func HBar(percent, w, h int, fg, bg string) string {
	percent = Clamp(percent)
	barWidth := percent * w / 100
	y := centerY(h)

	var b strings.Builder
	if fg != "" {
		b.WriteString(Fg(fg))
		b.WriteString(Rect(0, y, barWidth, h))
	}
	if bg != "" {
		b.WriteString(Fg(bg))
		b.WriteString(Rect(barWidth, y, w-barWidth, h))
	}
	return b.String()
}

// HBarBordered is the horizontal counterpart of VBarBordered.
func HBarBordered(percent, w, h int, fg, bg, border string) string {
	return Fg(border) + Rect(0, centerY(h), w, h) +
		Forward(1) + HBar(percent, w-2, h-2, fg, bg) + Forward(-1)
}

// PercentColor returns a colour going from red at 0% to green at 100% in
// sixteen steps.
func PercentColor(percent int) string {
	g := Clamp(percent) * 15 / 100
	r := 15 - g
	c := colorful.Color{R: float64(r*16) / 255, G: float64(g*16) / 255}
	return c.Hex()
}

// Ramp interpolates between two #rrggbb colours. Step i of n returns from at
// i=0 and to at i=n. Unparseable input returns from unchanged.
func Ramp(from, to string, i, n int) string {
	c1, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	c2, err := colorful.Hex(to)
	if err != nil || n <= 0 {
		return from
	}
	t := float64(i) / float64(n)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return c1.BlendRgb(c2, t).Hex()
}
