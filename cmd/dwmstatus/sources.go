package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/cptspacemanspiff/dwmstatus/internal/collector"
	"github.com/cptspacemanspiff/dwmstatus/internal/config"
	"github.com/cptspacemanspiff/dwmstatus/internal/statusline"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// withTimeout bounds a helper-backed collector by the helper timeout on top
// of the segment deadline.
func withTimeout[T any](d time.Duration, f func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return f(ctx)
	}
}

// musicBudget is how long a music query may take: music.timeout_ms, capped
// at the segment timeout.
func musicBudget(cfg *config.Config) time.Duration {
	return min(ms(cfg.Music.TimeoutMS), ms(cfg.General.SegmentTimeoutMS))
}

func musicSource(cfg config.MusicConfig, budget time.Duration) collector.MusicSource {
	switch cfg.Backend {
	case config.MusicMPD:
		return collector.NewMPDSource(cfg.MPDAddress, cfg.MPDPassword, budget)
	case config.MusicMPRIS:
		return collector.NewMPRISSource(cfg.MPRISPlayer)
	}
	return nil
}

// buildSources wires every collector named by cfg. Helpers with an empty
// command line are left nil so their segment stays hidden. The activity
// segment gets room for the call helpers and then the full music budget.
func buildSources(cfg *config.Config, cpu *collector.CPUCollector) statusline.Sources {
	helperTimeout := ms(cfg.Helpers.TimeoutMS)
	budget := musicBudget(cfg)

	src := statusline.Sources{
		Music:       musicSource(cfg.Music, budget),
		CPU:         cpu.Collect,
		Memory:      collector.CollectMemory,
		Temperature: collector.NewTemperatureCollector(nil).Collect,
		Wireless:    collector.CollectWireless,
		Battery:     collector.NewBatteryCollector(cfg.Battery.Devices).Collect,
		Now:         time.Now,

		ActivityTimeout: helperTimeout + budget,
	}
	if cfg.Helpers.CallWhat != "" {
		src.Call = withTimeout(helperTimeout, collector.NewCallSource(cfg.Helpers.CallWhat, cfg.Helpers.CallWho).Collect)
	}
	if cfg.Helpers.Volume != "" {
		src.Volume = withTimeout(helperTimeout, collector.NewVolumeCollector(cfg.Helpers.Volume, cfg.Volume.MuteMarker).Collect)
	}
	return src
}

func themeFromConfig(c config.ColorsConfig) (statusline.Theme, statusline.Palette) {
	th := statusline.Theme{
		Label:  c.Label,
		Text:   c.Text,
		Bar:    c.Bar,
		BarBg:  c.BarBg,
		Wait:   c.Wait,
		Muted:  c.Muted,
		Border: c.Border,
		Dim:    c.Dim,
	}
	var palette statusline.Palette
	for _, p := range c.Palette {
		palette = append(palette, statusline.ColorPair{Fg: p.Fg, Bg: p.Bg})
	}
	return th, palette
}

func formatFromConfig(cfg *config.Config) statusline.Format {
	return statusline.Format{
		Date:            cfg.Format.Date,
		Time:            cfg.Format.Time,
		TemperatureUnit: cfg.Format.TemperatureUnit,
		BatteryLow:      cfg.Battery.LowPercent,
	}
}

func newAssembler(cfg *config.Config, cpu *collector.CPUCollector, logger *slog.Logger) *statusline.Assembler {
	th, palette := themeFromConfig(cfg.Colors)
	segments := statusline.Segments(buildSources(cfg, cpu), th, formatFromConfig(cfg))
	return statusline.NewAssembler(segments, statusline.Options{
		Capacity: cfg.General.MaxLineBytes,
		Timeout:  ms(cfg.General.SegmentTimeoutMS),
		Palette:  palette,
	}, logger)
}
