package collector

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// CollectWireless returns the link quality of the first interface listed in
// /proc/net/wireless, clamped to 0..100.
func CollectWireless() (int, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return 0, fmt.Errorf("open procfs: %w", err)
	}
	ifaces, err := fs.Wireless()
	if err != nil {
		return 0, fmt.Errorf("read wireless: %w", err)
	}
	if len(ifaces) == 0 {
		return 0, fmt.Errorf("no wireless interface: %w", ErrUnavailable)
	}
	return clampPercent(ifaces[0].QualityLink), nil
}
