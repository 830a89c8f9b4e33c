package collector

import "errors"

// ErrUnavailable reports that a source has nothing to show this tick. It is
// distinct from a valid zero reading.
var ErrUnavailable = errors.New("unavailable")

var (
	procRoot  = "/proc"
	sysfsRoot = "/sys"
)

// SetRoots points every collector at alternative procfs and sysfs mounts.
// Empty values keep the current root.
func SetRoots(proc, sysfs string) {
	if proc != "" {
		procRoot = proc
	}
	if sysfs != "" {
		sysfsRoot = sysfs
	}
}

// CoreUsage is the share of one CPU line spent busy and waiting on I/O over
// the last sampling interval, both in percent.
type CoreUsage struct {
	Busy int `json:"busy"`
	Wait int `json:"wait"`
}

// BatteryStatus is the charge state reported by the power supply.
type BatteryStatus int

const (
	BatteryUnknown BatteryStatus = iota
	BatteryCharging
	BatteryDischarging
	BatteryFull
)

func (s BatteryStatus) String() string {
	switch s {
	case BatteryCharging:
		return "Charging"
	case BatteryDischarging:
		return "Discharging"
	case BatteryFull:
		return "Full"
	}
	return "Unknown"
}

// BatterySample holds a snapshot of one battery from /sys/class/power_supply.
type BatterySample struct {
	Device  string        `json:"device"`
	Percent int           `json:"percent"`
	Status  BatteryStatus `json:"status"`
}

// TemperatureReading is one CPU core sensor, in degrees Celsius.
type TemperatureReading struct {
	Sensor   string  `json:"sensor"`
	Current  float64 `json:"current"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// VolumeSample is the output of the volume helper.
type VolumeSample struct {
	Percent int  `json:"percent"`
	Muted   bool `json:"muted"`
}

// Call is an active call or notification reported by the call helpers.
type Call struct {
	What string `json:"what"`
	Who  string `json:"who"`
}

// Track is the song a music player is currently playing.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
