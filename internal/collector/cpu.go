package collector

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Jiffy categories read from each cpu line of /proc/stat, in file order.
const (
	cpuUser = iota
	cpuNice
	cpuSystem
	cpuIdle
	cpuIowait
	cpuIRQ
	cpuSoftIRQ
	cpuFields
)

type cpuCounters [cpuFields]int64

// CounterState remembers the raw counters of the previous sample, indexed like
// the result of ParseCPUStat. The zero value is a valid state with no baseline:
// the first sample against it reports usage since boot.
type CounterState struct {
	prev []cpuCounters
}

// Reset drops the baseline.
func (s *CounterState) Reset() {
	s.prev = nil
}

// Cores returns the number of lines tracked by the state, aggregate included.
func (s *CounterState) Cores() int {
	return len(s.prev)
}

// ParseCPUStat reads /proc/stat content and returns usage for every cpu line
// in order: index 0 is the aggregate "cpu" line, 1..N the individual cores.
// Lines that are not cpu lines, or have fewer than seven numeric fields, are
// skipped and do not take an index. State is updated to the new raw values.
func ParseCPUStat(r io.Reader, state *CounterState) ([]CoreUsage, error) {
	var usage []CoreUsage
	n := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cur, ok := parseCPULine(scanner.Text())
		if !ok {
			continue
		}

		var prev cpuCounters
		if n < len(state.prev) {
			prev = state.prev[n]
			state.prev[n] = cur
		} else {
			state.prev = append(state.prev, cur)
		}
		usage = append(usage, cpuDelta(prev, cur))
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Cores that went away must not leave a stale baseline behind.
	state.prev = state.prev[:n]
	return usage, nil
}

func parseCPULine(line string) (cpuCounters, bool) {
	var c cpuCounters
	fields := strings.Fields(line)
	if len(fields) < cpuFields+1 {
		return c, false
	}
	if !strings.HasPrefix(strings.ToLower(fields[0]), "cpu") {
		return c, false
	}
	for i := range c {
		v, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return c, false
		}
		c[i] = v
	}
	return c, true
}

// cpuDelta computes busy and iowait percentages between two raw samples.
// Counters that went backwards contribute nothing.
func cpuDelta(prev, cur cpuCounters) CoreUsage {
	var d cpuCounters
	var total int64
	for i := range d {
		d[i] = cur[i] - prev[i]
		if d[i] < 0 {
			d[i] = 0
		}
		total += d[i]
	}
	if total == 0 {
		return CoreUsage{}
	}

	busy := d[cpuUser] + d[cpuNice] + d[cpuSystem] + d[cpuIRQ] + d[cpuSoftIRQ]
	return CoreUsage{
		Busy: int(busy * 100 / total),
		Wait: int(d[cpuIowait] * 100 / total),
	}
}

// CPUCollector tracks per-core jiffy deltas across sampling intervals.
type CPUCollector struct {
	mu    sync.Mutex
	state CounterState
}

// NewCPUCollector creates a CPUCollector with an empty baseline.
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{}
}

// Collect reads /proc/stat and returns usage since the previous call. Index 0
// is the system-wide aggregate.
func (c *CPUCollector) Collect() ([]CoreUsage, error) {
	f, err := os.Open(filepath.Join(procRoot, "stat"))
	if err != nil {
		return nil, fmt.Errorf("open stat: %w", err)
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	usage, err := ParseCPUStat(f, &c.state)
	if err != nil {
		return nil, fmt.Errorf("read stat: %w", err)
	}
	if len(usage) == 0 {
		return nil, fmt.Errorf("no cpu lines: %w", ErrUnavailable)
	}
	return usage, nil
}

// Prime takes a fresh baseline and discards the usage it computes. The daemon
// calls it on resume so the first bar after a suspend does not average over
// the time spent asleep.
func (c *CPUCollector) Prime() error {
	_, err := c.Collect()
	return err
}
