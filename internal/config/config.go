package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeoutMs  = 30000
	DefaultChunkSize  = 8000
	DefaultBaudRate   = 115200
	DefaultRefreshMs  = 1000
	MinRefreshMs      = 200
	MaxRefreshMs      = 10000
	DefaultSaveFormat = "PNG"
)

// Config holds all scopeshot configuration.
type Config struct {
	TimeoutMs         int      `yaml:"timeout_ms,omitempty"`
	ChunkSize         int      `yaml:"chunk_size,omitempty"`
	ProfilesPath      string   `yaml:"profiles_path,omitempty"`
	InstrumentsCSV    string   `yaml:"instruments_csv,omitempty"`
	TCPEndpoints      []string `yaml:"tcp_endpoints,omitempty"`
	BaudRate          int      `yaml:"baud_rate,omitempty"`
	RefreshIntervalMs int      `yaml:"refresh_interval_ms,omitempty"`
	SaveDir           string   `yaml:"save_dir,omitempty"`
	SaveFormat        string   `yaml:"save_format,omitempty"`
	LogFile           string   `yaml:"log_file,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		TimeoutMs:         DefaultTimeoutMs,
		ChunkSize:         DefaultChunkSize,
		ProfilesPath:      "instrument_screenshots.yaml",
		InstrumentsCSV:    "instruments.csv",
		BaudRate:          DefaultBaudRate,
		RefreshIntervalMs: DefaultRefreshMs,
		SaveDir:           "screenshots",
		SaveFormat:        DefaultSaveFormat,
		LogFile:           "screenshot.log",
	}
}

// GlobalPath returns the per-user config file location.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scopeshot", "config.yaml")
}

// Load reads and merges configs.
// Order: defaults → global (~/.config/scopeshot/config.yaml) → explicit path.
func Load(path string) Config {
	cfg := Defaults()
	if gp := GlobalPath(); gp != "" {
		mergeFromFile(&cfg, gp)
	}
	if path != "" {
		mergeFromFile(&cfg, path)
	}
	return cfg
}

// Save writes the config to the given path, or to the global config when
// path is empty.
func Save(cfg Config, path string) error {
	if path == "" {
		path = GlobalPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Timeout returns the per-exchange response timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RefreshInterval returns the auto-refresh period, clamped to sane bounds.
func (c Config) RefreshInterval() time.Duration {
	ms := c.RefreshIntervalMs
	if ms < MinRefreshMs {
		ms = MinRefreshMs
	}
	if ms > MaxRefreshMs {
		ms = MaxRefreshMs
	}
	return time.Duration(ms) * time.Millisecond
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.TimeoutMs != 0 {
		cfg.TimeoutMs = fileCfg.TimeoutMs
	}
	if fileCfg.ChunkSize != 0 {
		cfg.ChunkSize = fileCfg.ChunkSize
	}
	if fileCfg.ProfilesPath != "" {
		cfg.ProfilesPath = fileCfg.ProfilesPath
	}
	if fileCfg.InstrumentsCSV != "" {
		cfg.InstrumentsCSV = fileCfg.InstrumentsCSV
	}
	if len(fileCfg.TCPEndpoints) > 0 {
		cfg.TCPEndpoints = fileCfg.TCPEndpoints
	}
	if fileCfg.BaudRate != 0 {
		cfg.BaudRate = fileCfg.BaudRate
	}
	if fileCfg.RefreshIntervalMs != 0 {
		cfg.RefreshIntervalMs = fileCfg.RefreshIntervalMs
	}
	if fileCfg.SaveDir != "" {
		cfg.SaveDir = fileCfg.SaveDir
	}
	if fileCfg.SaveFormat != "" {
		cfg.SaveFormat = fileCfg.SaveFormat
	}
	if fileCfg.LogFile != "" {
		cfg.LogFile = fileCfg.LogFile
	}
}
