package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	minIntervalSeconds = 1
	maxIntervalSeconds = 3600
	minMaxLineBytes    = 256
	maxMaxLineBytes    = 65536
	minTimeoutMS       = 10
	maxTimeoutMS       = 60000
	minMusicTimeoutMS  = 100
	maxMusicTimeoutMS  = 120000
	minLowPercent      = 0
	maxLowPercent      = 100
	maxBatteryDevices  = 8
	configDirName      = "dwmstatus"
	configFileName     = "config.toml"
)

// Music backends.
const (
	MusicMPD   = "mpd"
	MusicMPRIS = "mpris"
	MusicNone  = "none"
)

type Config struct {
	General GeneralConfig `toml:"general"`
	Battery BatteryConfig `toml:"battery"`
	Helpers HelpersConfig `toml:"helpers"`
	Volume  VolumeConfig  `toml:"volume"`
	Music   MusicConfig   `toml:"music"`
	Format  FormatConfig  `toml:"format"`
	Colors  ColorsConfig  `toml:"colors"`
	DBus    DBusConfig    `toml:"dbus"`
}

type GeneralConfig struct {
	IntervalSeconds  int    `toml:"interval_seconds"`
	MaxLineBytes     int    `toml:"max_line_bytes"`
	SegmentTimeoutMS int    `toml:"segment_timeout_ms"`
	ProcRoot         string `toml:"proc_root"`
	SysfsRoot        string `toml:"sysfs_root"`
}

type BatteryConfig struct {
	Devices    []string `toml:"devices"`
	LowPercent int      `toml:"low_percent"`
}

// HelpersConfig holds shell command lines run through /bin/sh. An empty
// command disables its segment. TimeoutMS bounds each helper run and may not
// exceed general.segment_timeout_ms.
type HelpersConfig struct {
	Volume    string `toml:"volume"`
	CallWhat  string `toml:"call_what"`
	CallWho   string `toml:"call_who"`
	TimeoutMS int    `toml:"timeout_ms"`
}

type VolumeConfig struct {
	MuteMarker string `toml:"mute_marker"`
}

// MusicConfig selects the now-playing backend. The query wait is the smaller
// of TimeoutMS and general.segment_timeout_ms; the activity segment's
// deadline is that wait plus helpers.timeout_ms for the call helpers.
type MusicConfig struct {
	Backend     string `toml:"backend"`
	MPDAddress  string `toml:"mpd_address"`
	MPDPassword string `toml:"mpd_password"`
	TimeoutMS   int    `toml:"timeout_ms"`
	MPRISPlayer string `toml:"mpris_player"`
}

// FormatConfig uses Go time layouts for the date and time segments.
type FormatConfig struct {
	Date            string `toml:"date"`
	Time            string `toml:"time"`
	TemperatureUnit string `toml:"temperature_unit"`
}

type ColorsConfig struct {
	Label   string      `toml:"label"`
	Text    string      `toml:"text"`
	Bar     string      `toml:"bar"`
	BarBg   string      `toml:"bar_bg"`
	Wait    string      `toml:"wait"`
	Muted   string      `toml:"muted"`
	Border  string      `toml:"border"`
	Dim     string      `toml:"dim"`
	Palette []ColorPair `toml:"palette"`
}

type ColorPair struct {
	Fg string `toml:"fg"`
	Bg string `toml:"bg"`
}

type DBusConfig struct {
	Enable bool `toml:"enable"`
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			IntervalSeconds:  1,
			MaxLineBytes:     4096,
			SegmentTimeoutMS: 800,
			ProcRoot:         "/proc",
			SysfsRoot:        "/sys",
		},
		Battery: BatteryConfig{
			Devices:    []string{"BAT0", "BAT1"},
			LowPercent: 20,
		},
		Helpers: HelpersConfig{
			Volume:    "volume.sh",
			CallWhat:  "dial what",
			CallWho:   "dial who",
			TimeoutMS: 700,
		},
		Volume: VolumeConfig{
			MuteMarker: "M",
		},
		Music: MusicConfig{
			Backend:    MusicMPD,
			MPDAddress: "localhost:6600",
			TimeoutMS:  30000,
		},
		Format: FormatConfig{
			Date:            "Mon Jan 02",
			Time:            "03:04 PM",
			TemperatureUnit: "F",
		},
		Colors: ColorsConfig{
			Label:  "#FF0000",
			Text:   "#FFFFFF",
			Bar:    "#FFFFFF",
			BarBg:  "#666666",
			Wait:   "#AAAAAA",
			Muted:  "#AA0000",
			Border: "#EEEEEE",
			Dim:    "#222222",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dwmstatus/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// Resolve loads the file at path, or the default file when path is empty.
// A missing default file yields the defaults; a missing explicit file is an
// error.
func Resolve(path string) (*Config, string, error) {
	if strings.TrimSpace(path) != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	def, err := DefaultPath()
	if err != nil {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(def)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, def, err
	}
	return cfg, def, nil
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	var err error
	sanitized.General.ProcRoot, err = sanitizePath("general.proc_root", sanitized.General.ProcRoot)
	if err != nil {
		return nil, err
	}
	sanitized.General.SysfsRoot, err = sanitizePath("general.sysfs_root", sanitized.General.SysfsRoot)
	if err != nil {
		return nil, err
	}

	if err := validateRange("general.interval_seconds", sanitized.General.IntervalSeconds, minIntervalSeconds, maxIntervalSeconds); err != nil {
		return nil, err
	}
	if err := validateRange("general.max_line_bytes", sanitized.General.MaxLineBytes, minMaxLineBytes, maxMaxLineBytes); err != nil {
		return nil, err
	}
	if err := validateRange("general.segment_timeout_ms", sanitized.General.SegmentTimeoutMS, minTimeoutMS, maxTimeoutMS); err != nil {
		return nil, err
	}
	if err := validateRange("helpers.timeout_ms", sanitized.Helpers.TimeoutMS, minTimeoutMS, maxTimeoutMS); err != nil {
		return nil, err
	}
	if err := validateRange("music.timeout_ms", sanitized.Music.TimeoutMS, minMusicTimeoutMS, maxMusicTimeoutMS); err != nil {
		return nil, err
	}
	if sanitized.Helpers.TimeoutMS > sanitized.General.SegmentTimeoutMS {
		return nil, fmt.Errorf("helpers.timeout_ms (%d) must not exceed general.segment_timeout_ms (%d)",
			sanitized.Helpers.TimeoutMS, sanitized.General.SegmentTimeoutMS)
	}
	if err := validateRange("battery.low_percent", sanitized.Battery.LowPercent, minLowPercent, maxLowPercent); err != nil {
		return nil, err
	}

	sanitized.Battery.Devices, err = sanitizeDevices(sanitized.Battery.Devices)
	if err != nil {
		return nil, err
	}

	sanitized.Helpers.Volume = strings.TrimSpace(sanitized.Helpers.Volume)
	sanitized.Helpers.CallWhat = strings.TrimSpace(sanitized.Helpers.CallWhat)
	sanitized.Helpers.CallWho = strings.TrimSpace(sanitized.Helpers.CallWho)

	if sanitized.Volume.MuteMarker == "" {
		return nil, fmt.Errorf("volume.mute_marker must not be empty")
	}

	sanitized.Music.Backend = strings.ToLower(strings.TrimSpace(sanitized.Music.Backend))
	switch sanitized.Music.Backend {
	case MusicMPD:
		sanitized.Music.MPDAddress = strings.TrimSpace(sanitized.Music.MPDAddress)
		if sanitized.Music.MPDAddress == "" {
			return nil, fmt.Errorf("music.mpd_address must not be empty for the mpd backend")
		}
	case MusicMPRIS, MusicNone:
	default:
		return nil, fmt.Errorf("music.backend must be one of mpd, mpris, none, got %q", cfg.Music.Backend)
	}

	if strings.TrimSpace(sanitized.Format.Date) == "" {
		return nil, fmt.Errorf("format.date must not be empty")
	}
	if strings.TrimSpace(sanitized.Format.Time) == "" {
		return nil, fmt.Errorf("format.time must not be empty")
	}
	sanitized.Format.TemperatureUnit = strings.ToUpper(strings.TrimSpace(sanitized.Format.TemperatureUnit))
	if sanitized.Format.TemperatureUnit != "C" && sanitized.Format.TemperatureUnit != "F" {
		return nil, fmt.Errorf("format.temperature_unit must be C or F, got %q", cfg.Format.TemperatureUnit)
	}

	if err := validateColors(&sanitized.Colors); err != nil {
		return nil, err
	}

	return &sanitized, nil
}

func Save(path string, cfg *Config) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("config path must not be empty")
	}

	sanitized, err := NormalizeAndValidate(cfg)
	if err != nil {
		return err
	}

	var data bytes.Buffer
	if err := toml.NewEncoder(&data).Encode(sanitized); err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}

	dir := filepath.Dir(trimmedPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	// The file may carry the MPD password.
	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, trimmedPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpPath = ""

	return nil
}

func sanitizePath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func sanitizeDevices(devices []string) ([]string, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("battery.devices must not be empty")
	}
	if len(devices) > maxBatteryDevices {
		return nil, fmt.Errorf("battery.devices must list at most %d devices, got %d", maxBatteryDevices, len(devices))
	}
	out := make([]string, 0, len(devices))
	for _, d := range devices {
		d = strings.TrimSpace(d)
		if d == "" || strings.ContainsRune(d, '/') || d == "." || d == ".." {
			return nil, fmt.Errorf("battery.devices entry %q is not a power supply name", d)
		}
		out = append(out, d)
	}
	return out, nil
}

func validateColors(c *ColorsConfig) error {
	named := []struct {
		name  string
		value string
	}{
		{"colors.label", c.Label},
		{"colors.text", c.Text},
		{"colors.bar", c.Bar},
		{"colors.bar_bg", c.BarBg},
		{"colors.wait", c.Wait},
		{"colors.muted", c.Muted},
		{"colors.border", c.Border},
		{"colors.dim", c.Dim},
	}
	for _, n := range named {
		if err := validateColor(n.name, n.value); err != nil {
			return err
		}
	}
	for i, p := range c.Palette {
		if err := validateColor(fmt.Sprintf("colors.palette[%d].fg", i), p.Fg); err != nil {
			return err
		}
		if err := validateColor(fmt.Sprintf("colors.palette[%d].bg", i), p.Bg); err != nil {
			return err
		}
	}
	return nil
}

func validateColor(name, value string) error {
	if len(value) != len("#rrggbb") {
		return fmt.Errorf("%s must be a #rrggbb colour, got %q", name, value)
	}
	if _, err := colorful.Hex(value); err != nil {
		return fmt.Errorf("%s must be a #rrggbb colour, got %q", name, value)
	}
	return nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
