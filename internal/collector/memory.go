package collector

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// CollectMemory returns the share of memory in use, computed from MemTotal and
// MemAvailable in /proc/meminfo. An unreadable or zero MemTotal is an error,
// never a 0% reading.
func CollectMemory() (int, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return 0, fmt.Errorf("open procfs: %w", err)
	}
	info, err := fs.Meminfo()
	if err != nil {
		return 0, fmt.Errorf("read meminfo: %w", err)
	}
	return memoryPercent(info)
}

func memoryPercent(info procfs.Meminfo) (int, error) {
	if info.MemTotal == nil || *info.MemTotal == 0 {
		return 0, fmt.Errorf("no MemTotal: %w", ErrUnavailable)
	}
	total := *info.MemTotal
	var avail uint64
	if info.MemAvailable != nil {
		avail = *info.MemAvailable
	}
	if avail >= total {
		return 0, nil
	}
	return int((total - avail) * 100 / total), nil
}
