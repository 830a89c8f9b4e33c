package collector

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// Thresholds assumed when a sensor does not report its own.
const (
	DefaultHighCelsius     = 80
	DefaultCriticalCelsius = 90
)

// TemperatureSource enumerates hardware monitoring sensors.
type TemperatureSource func(ctx context.Context) ([]host.TemperatureStat, error)

// TemperatureCollector reports the CPU core sensors among all hwmon chips.
type TemperatureCollector struct {
	source TemperatureSource
}

// NewTemperatureCollector creates a collector over source, or over the hwmon
// sensors of the host when source is nil. gopsutil resolves /sys through the
// HOST_SYS environment variable.
func NewTemperatureCollector(source TemperatureSource) *TemperatureCollector {
	if source == nil {
		source = host.SensorsTemperaturesWithContext
	}
	return &TemperatureCollector{source: source}
}

// Collect returns one reading per core sensor, ordered by chip and core number.
func (c *TemperatureCollector) Collect(ctx context.Context) ([]TemperatureReading, error) {
	stats, err := c.source(ctx)
	// Partial enumeration comes back with warnings; keep what was read.
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("enumerate sensors: %w", err)
	}

	var readings []TemperatureReading
	for _, st := range stats {
		if !isCoreSensor(st.SensorKey) {
			continue
		}
		r := TemperatureReading{
			Sensor:   st.SensorKey,
			Current:  st.Temperature,
			High:     st.High,
			Critical: st.Critical,
		}
		if r.High <= 0 {
			r.High = DefaultHighCelsius
		}
		if r.Critical <= 0 {
			r.Critical = DefaultCriticalCelsius
		}
		readings = append(readings, r)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no core sensor: %w", ErrUnavailable)
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return sensorLess(readings[i].Sensor, readings[j].Sensor)
	})
	return readings, nil
}

// isCoreSensor matches keys like "coretemp_core_0": chip name, then a label
// containing "core". The chip part is ignored so "coretemp_package_id_0" is
// not a match.
func isCoreSensor(key string) bool {
	_, label, ok := strings.Cut(key, "_")
	return ok && strings.Contains(strings.ToLower(label), "core")
}

// sensorLess orders keys by their text before the trailing number, then by
// the number, so core_10 sorts after core_9.
func sensorLess(a, b string) bool {
	pa, na := splitTrailingNumber(a)
	pb, nb := splitTrailingNumber(b)
	if pa != pb {
		return pa < pb
	}
	return na < nb
}

func splitTrailingNumber(key string) (string, int) {
	i := strings.LastIndex(key, "_")
	if i < 0 {
		return key, -1
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return key, -1
	}
	return key[:i], n
}
