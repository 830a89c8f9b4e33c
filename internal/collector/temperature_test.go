package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/host"
)

func stubSensors(stats []host.TemperatureStat, err error) TemperatureSource {
	return func(context.Context) ([]host.TemperatureStat, error) {
		return stats, err
	}
}

func TestTemperatureCollector_FiltersCoreSensors(t *testing.T) {
	c := NewTemperatureCollector(stubSensors([]host.TemperatureStat{
		{SensorKey: "coretemp_package_id_0", Temperature: 55, High: 80, Critical: 100},
		{SensorKey: "coretemp_core_1", Temperature: 48, High: 84, Critical: 100},
		{SensorKey: "coretemp_core_0", Temperature: 45},
		{SensorKey: "acpitz", Temperature: 27.8},
		{SensorKey: "nvme_composite", Temperature: 38},
	}, nil))

	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []TemperatureReading{
		{Sensor: "coretemp_core_0", Current: 45, High: DefaultHighCelsius, Critical: DefaultCriticalCelsius},
		{Sensor: "coretemp_core_1", Current: 48, High: 84, Critical: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("Collect() returned %d readings (%v), want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reading[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTemperatureCollector_NumericOrder(t *testing.T) {
	var stats []host.TemperatureStat
	for _, key := range []string{"coretemp_core_10", "coretemp_core_9", "coretemp_core_2"} {
		stats = append(stats, host.TemperatureStat{SensorKey: key, Temperature: 40})
	}
	c := NewTemperatureCollector(stubSensors(stats, nil))

	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	order := []string{"coretemp_core_2", "coretemp_core_9", "coretemp_core_10"}
	for i, key := range order {
		if got[i].Sensor != key {
			t.Fatalf("reading[%d].Sensor = %q, want %q", i, got[i].Sensor, key)
		}
	}
}

func TestTemperatureCollector_KeepsPartialResults(t *testing.T) {
	c := NewTemperatureCollector(stubSensors([]host.TemperatureStat{
		{SensorKey: "k10temp_core_0", Temperature: 61},
	}, errors.New("some sensors unreadable")))

	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1 || got[0].Current != 61 {
		t.Fatalf("Collect() = %+v, want one reading at 61", got)
	}
}

func TestTemperatureCollector_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		stats []host.TemperatureStat
		err   error
	}{
		{name: "no sensors"},
		{name: "no core sensor", stats: []host.TemperatureStat{{SensorKey: "acpitz", Temperature: 30}}},
		{name: "enumeration failed", err: errors.New("no hwmon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTemperatureCollector(stubSensors(tt.stats, tt.err))
			_, err := c.Collect(context.Background())
			if err == nil {
				t.Fatal("Collect() error = nil, want error")
			}
			if tt.err == nil && !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Collect() error = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestIsCoreSensor(t *testing.T) {
	tests := map[string]bool{
		"coretemp_core_0":       true,
		"k10temp_core_3":        true,
		"coretemp_package_id_0": false,
		"acpitz":                false,
		"amdgpu_edge":           false,
	}
	for key, want := range tests {
		if got := isCoreSensor(key); got != want {
			t.Errorf("isCoreSensor(%q) = %v, want %v", key, got, want)
		}
	}
}
