package statusline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cptspacemanspiff/dwmstatus/internal/collector"
	"github.com/cptspacemanspiff/dwmstatus/internal/markup"
)

// Segment geometry, in pixels.
const (
	coreBarWidth    = 4
	coreBarStep     = 5
	memoryBarWidth  = 6
	sensorBarWidth  = 4
	sensorBarStep   = 5
	wifiSegments    = 15
	wifiSegWidth    = 2
	wifiSegStep     = 3
	batteryWidth    = 25
	batteryHeight   = 11
	batteryCapWidth = 2
	batteryNubLen   = 5
)

// Temperature colouring, in degrees Celsius.
const (
	tempScaleFloor = 30
	tempWarm       = 50
	tempHot        = 65
	tempWarmColor  = "#FFA500"
	tempHotColor   = "#FF0000"
)

// Format controls the text parts of the line.
type Format struct {
	Date            string // time.Format layout
	Time            string // time.Format layout
	TemperatureUnit string // "C" or "F"
	BatteryLow      int    // percent below which a discharging battery turns red
}

// DefaultFormat matches "Mon Jan 02" and "03:04 PM" in Fahrenheit.
func DefaultFormat() Format {
	return Format{
		Date:            "Mon Jan 02",
		Time:            "03:04 PM",
		TemperatureUnit: "F",
		BatteryLow:      20,
	}
}

// Sources are the collectors feeding the segments. A nil source leaves its
// segment out of the line. ActivityTimeout, when set, replaces the
// per-segment timeout for the activity segment, which runs the call helpers
// and the music query one after the other.
type Sources struct {
	Call        func(ctx context.Context) (*collector.Call, error)
	Music       collector.MusicSource
	CPU         func() ([]collector.CoreUsage, error)
	Memory      func() (int, error)
	Volume      func(ctx context.Context) (*collector.VolumeSample, error)
	Temperature func(ctx context.Context) ([]collector.TemperatureReading, error)
	Wireless    func() (int, error)
	Battery     func() (*collector.BatterySample, error)
	Now         func() time.Time

	ActivityTimeout time.Duration
}

// Segment is one block of the line. Render returns the fragment or an error
// when there is nothing to show this tick.
type Segment struct {
	Name    string
	Color   int           // palette entry
	Timeout time.Duration // zero uses the assembler's timeout
	Render  func(ctx context.Context) (string, error)
}

func unavailable(what string) error {
	return fmt.Errorf("%s: %w", what, collector.ErrUnavailable)
}

// Segments builds the fixed segment order: activity, cpu, memory, volume,
// temperature, wireless, battery, date and time.
func Segments(src Sources, th Theme, f Format) []Segment {
	now := src.Now
	if now == nil {
		now = time.Now
	}

	return []Segment{
		{Name: "activity", Color: 0, Timeout: src.ActivityTimeout, Render: func(ctx context.Context) (string, error) {
			return renderActivity(ctx, src.Call, src.Music, th)
		}},
		{Name: "cpu", Color: 1, Render: func(context.Context) (string, error) {
			if src.CPU == nil {
				return "", unavailable("cpu")
			}
			cores, err := src.CPU()
			if err != nil {
				return "", err
			}
			return renderCPU(cores, th), nil
		}},
		{Name: "memory", Color: 2, Render: func(context.Context) (string, error) {
			if src.Memory == nil {
				return "", unavailable("memory")
			}
			pct, err := src.Memory()
			if err != nil {
				return "", err
			}
			return renderMemory(pct, th), nil
		}},
		{Name: "volume", Color: 1, Render: func(ctx context.Context) (string, error) {
			if src.Volume == nil {
				return "", unavailable("volume")
			}
			v, err := src.Volume(ctx)
			if err != nil {
				return "", err
			}
			return renderVolume(v, th), nil
		}},
		{Name: "temperature", Color: 2, Render: func(ctx context.Context) (string, error) {
			if src.Temperature == nil {
				return "", unavailable("temperature")
			}
			readings, err := src.Temperature(ctx)
			if err != nil {
				return "", err
			}
			return renderTemperature(readings, th, f.TemperatureUnit), nil
		}},
		{Name: "wireless", Color: 1, Render: func(context.Context) (string, error) {
			if src.Wireless == nil {
				return "", unavailable("wireless")
			}
			pct, err := src.Wireless()
			if err != nil {
				return "", err
			}
			return renderWireless(pct, th), nil
		}},
		{Name: "battery", Color: 2, Render: func(context.Context) (string, error) {
			if src.Battery == nil {
				return "", unavailable("battery")
			}
			b, err := src.Battery()
			if err != nil {
				return "", err
			}
			return renderBattery(b, th, f.BatteryLow)
		}},
		{Name: "date", Color: 0, Render: func(context.Context) (string, error) {
			return " " + markup.Fg(th.Label) + now().Format(f.Date), nil
		}},
		{Name: "time", Color: 0, Render: func(context.Context) (string, error) {
			return markup.Forward(-4) + markup.Fg(th.Text) + " " + now().Format(f.Time), nil
		}},
	}
}

// renderActivity shows an active call and otherwise the playing track. The
// music source is not queried while a call is shown.
func renderActivity(ctx context.Context, call func(context.Context) (*collector.Call, error), music collector.MusicSource, th Theme) (string, error) {
	if call != nil {
		if c, err := call(ctx); err == nil {
			s := "  " + markup.Fg(th.Label) + c.What
			if c.Who != "" {
				s += markup.Fg(th.Text) + " " + c.Who + " "
			}
			return s, nil
		}
	}
	if music == nil {
		return "", unavailable("activity")
	}
	t, err := music.NowPlaying(ctx)
	if err != nil {
		return "", err
	}
	if t.Title == "" && t.Artist == "" {
		return "", unavailable("untitled track")
	}
	s := "  " + markup.Fg(th.Label) + "PLAY" + markup.Fg(th.Text) + " " + t.Title
	if t.Artist != "" {
		s += " - " + t.Artist
	}
	return s + " ", nil
}

// renderCPU draws one two-layer bar per core: busy plus iowait in the wait
// colour with busy alone drawn over it. The aggregate line is only shown
// when it is the sole entry.
func renderCPU(cores []collector.CoreUsage, th Theme) string {
	var b strings.Builder
	b.WriteString(markup.Fg(th.Label) + "CPU" + markup.Fg(th.Text) + markup.Forward(1))

	if len(cores) > 1 {
		cores = cores[1:]
	}
	for _, c := range cores {
		b.WriteString(markup.VBar(c.Busy+c.Wait, coreBarWidth, markup.CanvasHeight, th.Wait, th.BarBg))
		b.WriteString(markup.VBar(c.Busy, coreBarWidth, markup.CanvasHeight, th.Bar, ""))
		b.WriteString(markup.Forward(coreBarStep))
	}
	return b.String()
}

func renderMemory(pct int, th Theme) string {
	return "  " + markup.Fg(th.Label) + "MEM" + markup.Forward(1) +
		markup.VBar(pct, memoryBarWidth, markup.CanvasHeight, th.Bar, th.BarBg) +
		markup.Forward(memoryBarWidth) + markup.Fg(th.Text) + fmt.Sprintf(" %d%%", markup.Clamp(pct))
}

func renderVolume(v *collector.VolumeSample, th Theme) string {
	fg := th.Bar
	if v.Muted {
		fg = th.Muted
	}
	return " " + markup.Fg(th.Label) + "VOL" + markup.Forward(1) +
		markup.VBar(v.Percent, memoryBarWidth, markup.CanvasHeight, fg, th.BarBg) +
		markup.Forward(memoryBarWidth) + markup.Fg(th.Text) + markup.Forward(8)
}

// temperatureFraction maps t onto a bar that starts at 30 degrees and is
// full at the critical threshold.
func temperatureFraction(t, critical float64) int {
	span := critical - tempScaleFloor
	if span <= 0 {
		if t >= critical {
			return 100
		}
		return 0
	}
	return markup.Clamp(int((t - tempScaleFloor) * 100 / span))
}

func temperatureColor(t float64, neutral string) string {
	switch {
	case t >= tempHot:
		return tempHotColor
	case t >= tempWarm:
		return tempWarmColor
	}
	return neutral
}

// renderTemperature draws a bar per core sensor followed by the hottest
// reading in unit.
func renderTemperature(readings []collector.TemperatureReading, th Theme, unit string) string {
	if len(readings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(" " + markup.Fg(th.Label) + "TEMP" + markup.Forward(1))

	hottest := readings[0].Current
	for _, r := range readings {
		hottest = math.Max(hottest, r.Current)
		b.WriteString(markup.VBar(temperatureFraction(r.Current, r.Critical), sensorBarWidth, markup.CanvasHeight,
			temperatureColor(r.Current, th.Text), th.BarBg))
		b.WriteString(markup.Forward(sensorBarStep))
	}

	shown := hottest
	if strings.EqualFold(unit, "F") {
		shown = hottest*9/5 + 32
		unit = "F"
	} else {
		unit = "C"
	}
	fmt.Fprintf(&b, "%s%d°%s%s ", markup.Fg(temperatureColor(hottest, th.Text)), int(shown), unit, markup.Forward(4))
	return b.String()
}

// wifiLit reports whether segment i (1-based) of the wireless indicator is
// lit, i.e. i*100/15 <= pct.
func wifiLit(i, pct int) bool {
	return i*100 <= pct*wifiSegments
}

// renderWireless draws fifteen rising segments. Lit ones get brighter from
// left to right, the rest use the dim colour.
func renderWireless(pct int, th Theme) string {
	pct = markup.Clamp(pct)
	var b strings.Builder
	b.WriteString(" " + markup.Fg(th.Label) + "WIFI" + markup.Fg(th.Text) + markup.Forward(1))
	for i := 1; i <= wifiSegments; i++ {
		color := th.Dim
		if wifiLit(i, pct) {
			color = markup.Ramp(th.BarBg, th.Bar, i, wifiSegments)
		}
		b.WriteString(markup.VBar(i*100/wifiSegments, wifiSegWidth, markup.CanvasHeight, color, ""))
		b.WriteString(markup.Forward(wifiSegStep))
	}
	return b.String()
}

func batteryColor(b *collector.BatterySample, th Theme, low int) (string, error) {
	switch b.Status {
	case collector.BatteryCharging, collector.BatteryFull:
		return th.Border, nil
	case collector.BatteryDischarging:
		if b.Percent < low {
			return tempHotColor, nil
		}
		return markup.PercentColor(b.Percent), nil
	}
	return "", unavailable("battery status " + b.Status.String())
}

// renderBattery draws the charge inside an outline, then cuts the top and
// bottom of the rightmost column so the middle remains as the terminal.
func renderBattery(b *collector.BatterySample, th Theme, low int) (string, error) {
	fg, err := batteryColor(b, th, low)
	if err != nil {
		return "", err
	}
	y := (markup.CanvasHeight - batteryHeight) / 2
	cut := (batteryHeight - batteryNubLen) / 2
	x := batteryWidth - batteryCapWidth

	return "  " + markup.VBarBordered(b.Percent, batteryWidth, batteryHeight, fg, th.BarBg, th.Border) +
		markup.Fg(th.Dim) +
		markup.Rect(x, y, batteryCapWidth, cut) +
		markup.Rect(x, y+batteryHeight-cut, batteryCapWidth, cut) +
		markup.Forward(batteryWidth), nil
}
