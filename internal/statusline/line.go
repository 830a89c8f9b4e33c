// Package statusline assembles collector output into the single markup line
// shown in the dwm bar.
package statusline

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// DefaultCapacity is the byte budget of one status line.
const DefaultCapacity = 4096

// Line is an append-only buffer that never grows past its capacity. Writes
// that do not fit are cut at a UTF-8 boundary and the rest is dropped.
type Line struct {
	buf       []byte
	capacity  int
	truncated bool
}

// NewLine returns an empty line holding at most capacity bytes.
func NewLine(capacity int) *Line {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Line{buf: make([]byte, 0, capacity), capacity: capacity}
}

// Append adds s, or as much of it as fits.
func (l *Line) Append(s string) {
	room := l.capacity - len(l.buf)
	if len(s) > room {
		cut := room
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
		l.truncated = true
	}
	l.buf = append(l.buf, s...)
}

// Appendf formats according to format and appends the result.
func (l *Line) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Len returns the number of bytes used.
func (l *Line) Len() int { return len(l.buf) }

// Cap returns the byte budget.
func (l *Line) Cap() int { return l.capacity }

// Truncated reports whether any append was cut short.
func (l *Line) Truncated() bool { return l.truncated }

// Bytes returns the line contents. The slice aliases the buffer.
func (l *Line) Bytes() []byte { return l.buf }

// String returns a copy of the line contents.
func (l *Line) String() string { return string(l.buf) }

// Reset empties the line and clears the truncation flag.
func (l *Line) Reset() {
	l.buf = l.buf[:0]
	l.truncated = false
}

// WidthHistory remembers the byte width of the previous line so a shorter
// line can be left-padded and the bar does not jump around.
type WidthHistory struct {
	prev int
}

// Pad returns line with enough leading spaces to reach the previous width,
// never exceeding capacity. The unpadded width becomes the new history.
func (h *WidthHistory) Pad(line []byte, capacity int) []byte {
	cur := len(line)
	defer func() { h.prev = cur }()

	pad := h.prev - cur
	if pad > capacity-cur {
		pad = capacity - cur
	}
	if pad <= 0 {
		return line
	}

	out := make([]byte, 0, cur+pad)
	out = append(out, bytes.Repeat([]byte{' '}, pad)...)
	return append(out, line...)
}

// Previous returns the width recorded by the last Pad call.
func (h *WidthHistory) Previous() int { return h.prev }
