package collector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultBatteryDevices are tried in order when no devices are configured.
var DefaultBatteryDevices = []string{"BAT0", "BAT1"}

// BatteryCollector reads charge level and status of the first readable
// battery among a list of power_supply devices.
type BatteryCollector struct {
	devices []string
}

// NewBatteryCollector creates a collector trying devices in order.
func NewBatteryCollector(devices []string) *BatteryCollector {
	if len(devices) == 0 {
		devices = DefaultBatteryDevices
	}
	return &BatteryCollector{devices: devices}
}

// Collect returns the first battery whose charge can be read. A battery whose
// status cannot be read is returned with BatteryUnknown.
func (bc *BatteryCollector) Collect() (*BatterySample, error) {
	var errs []error
	for _, dev := range bc.devices {
		dir := filepath.Join(sysfsRoot, "class/power_supply", dev)
		now, full, err := readCharge(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dev, err))
			continue
		}

		s := &BatterySample{
			Device:  dev,
			Percent: clampPercent(int(float64(now) / float64(full) * 100)),
			Status:  readBatteryStatus(filepath.Join(dir, "status")),
		}

		// Some firmware reports "Discharging" at full capacity while on AC power.
		if s.Status == BatteryDischarging && s.Percent >= 100 && isACOnline() {
			s.Status = BatteryFull
		}
		return s, nil
	}
	return nil, fmt.Errorf("no battery found: %w", errors.Join(append(errs, ErrUnavailable)...))
}

// readCharge returns the now/full pair, preferring energy_* (µWh) over
// charge_* (µAh) files.
func readCharge(dir string) (now, full int64, err error) {
	for _, kind := range []string{"energy", "charge"} {
		full, err = readIntFile(filepath.Join(dir, kind+"_full"))
		if err != nil {
			continue
		}
		if full <= 0 {
			err = fmt.Errorf("%s_full is %d", kind, full)
			continue
		}
		now, err = readIntFile(filepath.Join(dir, kind+"_now"))
		if err != nil {
			continue
		}
		return now, full, nil
	}
	return 0, 0, fmt.Errorf("read charge: %w", err)
}

// readBatteryStatus maps the first letter of the status file.
func readBatteryStatus(path string) BatteryStatus {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return BatteryUnknown
	}
	switch unicode.ToUpper(rune(data[0])) {
	case 'C':
		return BatteryCharging
	case 'D':
		return BatteryDischarging
	case 'F':
		return BatteryFull
	}
	return BatteryUnknown
}

// isACOnline checks if any AC adapter is online.
func isACOnline() bool {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/power_supply/AC*/online"))
	if err != nil {
		return false
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err == nil && strings.TrimSpace(string(data)) == "1" {
			return true
		}
	}
	return false
}
