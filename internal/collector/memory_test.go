package collector

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/procfs"
)

func TestCollectMemory(t *testing.T) {
	root := setTestProcRoot(t)
	writeTestFile(t, filepath.Join(root, "meminfo"), "MemTotal: 1000\nMemAvailable: 400\n")

	got, err := CollectMemory()
	if err != nil {
		t.Fatalf("CollectMemory() error = %v", err)
	}
	if got != 60 {
		t.Fatalf("CollectMemory() = %d, want 60", got)
	}
}

func TestCollectMemory_KernelFormat(t *testing.T) {
	root := setTestProcRoot(t)
	writeTestFile(t, filepath.Join(root, "meminfo"),
		"MemTotal:       16303232 kB\n"+
			"MemFree:         1604220 kB\n"+
			"MemAvailable:    8151616 kB\n"+
			"Buffers:          523904 kB\n"+
			"Cached:          6601340 kB\n")

	got, err := CollectMemory()
	if err != nil {
		t.Fatalf("CollectMemory() error = %v", err)
	}
	if got != 50 {
		t.Fatalf("CollectMemory() = %d, want 50", got)
	}
}

func TestCollectMemory_MissingFile(t *testing.T) {
	_ = setTestProcRoot(t)

	for i := 0; i < 2; i++ {
		if _, err := CollectMemory(); err == nil {
			t.Fatalf("CollectMemory() #%d error = nil, want error", i)
		}
	}
}

func TestMemoryPercent(t *testing.T) {
	u := func(v uint64) *uint64 { return &v }

	tests := []struct {
		name    string
		info    procfs.Meminfo
		want    int
		wantErr bool
	}{
		{name: "used share", info: procfs.Meminfo{MemTotal: u(1000), MemAvailable: u(400)}, want: 60},
		{name: "all available", info: procfs.Meminfo{MemTotal: u(1000), MemAvailable: u(1000)}, want: 0},
		{name: "available above total", info: procfs.Meminfo{MemTotal: u(1000), MemAvailable: u(2000)}, want: 0},
		{name: "no available line", info: procfs.Meminfo{MemTotal: u(1000)}, want: 100},
		{name: "zero total", info: procfs.Meminfo{MemTotal: u(0), MemAvailable: u(0)}, wantErr: true},
		{name: "no total", info: procfs.Meminfo{MemAvailable: u(10)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := memoryPercent(tt.info)
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Fatalf("memoryPercent() error = %v, want ErrUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("memoryPercent() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("memoryPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}
