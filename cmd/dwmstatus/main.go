package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cptspacemanspiff/dwmstatus/internal/collector"
	"github.com/cptspacemanspiff/dwmstatus/internal/config"
	dbussvc "github.com/cptspacemanspiff/dwmstatus/internal/dbus"
	"github.com/cptspacemanspiff/dwmstatus/internal/sink"
	"github.com/cptspacemanspiff/dwmstatus/internal/statusline"
)

// normalizeArgs lets the debug flag be given as -d or -D.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch a {
		case "-D", "--D", "--d":
			a = "-d"
		}
		out[i] = a
	}
	return out
}

// nextTick returns the first interval boundary after now, so redraws land
// when the clock changes.
func nextTick(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}

// publishTick renders one line and hands it to pub.
func publishTick(ctx context.Context, asm *statusline.Assembler, pub sink.Publisher, logger *slog.Logger) {
	line := asm.Tick(ctx)
	if err := pub.Publish(line); err != nil {
		logger.Error("publish status line", "err", err)
	}
}

// run ticks until ctx is cancelled. A value on wake re-baselines the CPU
// counters and redraws immediately.
func run(ctx context.Context, asm *statusline.Assembler, pub sink.Publisher, cpu *collector.CPUCollector,
	wake <-chan struct{}, interval time.Duration, logger *slog.Logger) {
	publishTick(ctx, asm, pub, logger)

	timer := time.NewTimer(time.Until(nextTick(time.Now(), interval)))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			publishTick(ctx, asm, pub, logger)
			timer.Reset(time.Until(nextTick(time.Now(), interval)))
		case <-wake:
			if err := cpu.Prime(); err != nil {
				logger.Debug("prime cpu counters", "topic", "cpu", "err", err)
			}
			publishTick(ctx, asm, pub, logger)
		case <-ctx.Done():
			return
		}
	}
}

// applyRoots points the collectors, and gopsutil through its environment
// variables, at the configured procfs and sysfs mounts.
func applyRoots(cfg *config.Config) {
	collector.SetRoots(cfg.General.ProcRoot, cfg.General.SysfsRoot)
	if cfg.General.ProcRoot != "/proc" {
		os.Setenv("HOST_PROC", cfg.General.ProcRoot)
	}
	if cfg.General.SysfsRoot != "/sys" {
		os.Setenv("HOST_SYS", cfg.General.SysfsRoot)
	}
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	debug := fs.Bool("d", false, "echo every status line to stdout (also -D)")
	configPath := fs.String("config", "", "config file (default $XDG_CONFIG_HOME/dwmstatus/config.toml)")
	verbose := fs.Bool("verbose", false, "enable all verbose logging (equivalent to -log=all)")
	logFlag := fs.String("log", "", "comma-separated log topics: activity,cpu,memory,volume,temperature,wireless,battery,sleep (or 'all')")
	writeConfig := fs.String("write-config", "", "write the effective configuration to this path and exit")
	_ = fs.Parse(normalizeArgs(os.Args[1:]))

	handler := newTopicHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}), *logFlag, *verbose)
	logger := slog.New(handler)
	sleepLog := logger.With("topic", "sleep")

	cfg, path, err := config.Resolve(*configPath)
	if err != nil {
		logger.Error("load config", "path", path, "err", err)
		os.Exit(1)
	}
	if path != "" {
		logger.Info("config loaded", "path", path)
	}

	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			logger.Error("write config", "path", *writeConfig, "err", err)
			os.Exit(1)
		}
		logger.Info("config written", "path", *writeConfig)
		return
	}

	applyRoots(cfg)

	display, err := sink.OpenX11("")
	if err != nil {
		logger.Error("cannot open display", "err", err)
		os.Exit(1)
	}
	defer display.Close()

	var pub sink.Publisher = display
	if *debug {
		pub = &sink.Debug{Next: display, Out: os.Stdout}
	}

	cpu := collector.NewCPUCollector()
	if err := cpu.Prime(); err != nil {
		logger.Debug("prime cpu counters", "topic", "cpu", "err", err)
	}
	asm := newAssembler(cfg, cpu, logger)

	if cfg.DBus.Enable {
		conn, err := dbussvc.NewService(asm).Export()
		if err != nil {
			logger.Warn("status service unavailable", "err", err)
		} else {
			defer conn.Close()
			logger.Info("D-Bus service registered", "name", "org.dwmstatus.Status")
		}
	}

	var wakeCh <-chan struct{}
	sleepMon, err := collector.NewSleepMonitor(sleepLog)
	if err != nil {
		logger.Warn("sleep monitor unavailable", "err", err)
	} else {
		wakeCh = sleepMon.Resumed()
		defer sleepMon.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.General.IntervalSeconds) * time.Second
	logger.Info("dwmstatus started", "interval", interval, "debug", *debug)
	run(ctx, asm, pub, cpu, wakeCh, interval, logger)
	logger.Info("shutting down")

	// Leave an empty name behind so dwm falls back to its own status.
	if err := display.Publish(""); err != nil {
		logger.Debug("clear status", "err", err)
	}
}
