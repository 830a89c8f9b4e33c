package statusline

import "github.com/cptspacemanspiff/dwmstatus/internal/markup"

// Theme holds the colours used by every segment.
type Theme struct {
	Label  string // segment labels and the date
	Text   string // values and the time
	Bar    string // bar fill
	BarBg  string // empty part of a bar
	Wait   string // CPU time spent waiting on I/O
	Muted  string // volume bar when muted
	Border string // battery outline, charging and full fill
	Dim    string // unlit wireless segments and the battery cap cut-outs
}

// DefaultTheme returns the red label, white value look of the classic bar.
func DefaultTheme() Theme {
	return Theme{
		Label:  "#FF0000",
		Text:   "#FFFFFF",
		Bar:    "#FFFFFF",
		BarBg:  "#666666",
		Wait:   "#AAAAAA",
		Muted:  "#AA0000",
		Border: "#EEEEEE",
		Dim:    "#222222",
	}
}

// ColorPair is a foreground and background colour switched together.
type ColorPair struct {
	Fg string
	Bg string
}

// Palette is a rotation of colour pairs; segments pick an entry by index.
type Palette []ColorPair

// Switch returns the directives selecting entry i, wrapping around. An empty
// palette switches nothing.
func (p Palette) Switch(i int) string {
	if len(p) == 0 {
		return ""
	}
	i %= len(p)
	if i < 0 {
		i += len(p)
	}
	return markup.Bg(p[i].Bg) + markup.Fg(p[i].Fg)
}
