package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMuteMarker is the character the volume helper appends when muted.
const DefaultMuteMarker = "M"

// VolumeCollector asks an external helper for the mixer level.
type VolumeCollector struct {
	command string
	marker  string
}

// NewVolumeCollector creates a collector running command. The helper prints
// a percentage optionally followed by marker.
func NewVolumeCollector(command, marker string) *VolumeCollector {
	return &VolumeCollector{command: command, marker: marker}
}

// Collect runs the helper and parses its output.
func (c *VolumeCollector) Collect(ctx context.Context) (*VolumeSample, error) {
	line, err := RunHelper(ctx, c.command)
	if err != nil {
		return nil, err
	}
	return ParseVolume(line, c.marker)
}

// ParseVolume reads the leading integer of line and reports whether marker
// appears after it.
func ParseVolume(line, marker string) (*VolumeSample, error) {
	s := strings.TrimSpace(line)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil, fmt.Errorf("parse volume %q: no leading number", line)
	}
	pct, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil, fmt.Errorf("parse volume %q: %w", line, err)
	}
	return &VolumeSample{
		Percent: clampPercent(pct),
		Muted:   marker != "" && strings.Contains(s[end:], marker),
	}, nil
}
