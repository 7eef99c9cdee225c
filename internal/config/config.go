package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults. Relative paths resolve against the working directory, which
// matches how the board is usually launched from its install directory.
const (
	DefaultPath          = "./config/config.yaml"
	DefaultListen        = "127.0.0.1:8080"
	DefaultTimezone      = "Asia/Seoul"
	DefaultTimetablePath = "./config/timetable.json"
	DefaultThemePath     = "./config/theme.json"
	DefaultBellPath      = "./sound/bell.mp3"
	DefaultTick          = "@every 1s"
	DefaultLogLevel      = "info"
	DefaultCacheDir      = "./cache/ics"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the board endpoints.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of the board page and API.
	Listen string `yaml:"listen" json:"listen" validate:"required,hostname_port"`

	// Timezone is the IANA zone the classroom clock runs in.
	Timezone string `yaml:"timezone" json:"timezone" validate:"required"`

	// Timetable is the week timetable document (.json, .yaml or .ics), or
	// an http(s) URL of an ICS feed.
	Timetable string `yaml:"timetable" json:"timetable" validate:"required"`

	// CacheDir keeps the last good copy of a remote timetable feed.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Theme maps subjects to cell colors (.json or .yaml).
	Theme string `yaml:"theme" json:"theme" validate:"required"`

	// Bell is the audio file played on every period change (.mp3 or .wav).
	Bell string `yaml:"bell" json:"bell"`

	// Chime toggles bell playback. A pointer so that an explicit false
	// survives Normalize.
	Chime *bool `yaml:"chime,omitempty" json:"chime,omitempty"`

	// Tick is a cron spec with a seconds field that drives classification.
	Tick string `yaml:"tick" json:"tick" validate:"required"`

	LogLevel string `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	chime := true
	return &Config{
		Listen:    DefaultListen,
		Timezone:  DefaultTimezone,
		Timetable: DefaultTimetablePath,
		CacheDir:  DefaultCacheDir,
		Theme:     DefaultThemePath,
		Bell:      DefaultBellPath,
		Chime:     &chime,
		Tick:      DefaultTick,
		LogLevel:  DefaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Timetable == "" {
		c.Timetable = d.Timetable
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.Bell == "" {
		c.Bell = d.Bell
	}
	if c.Chime == nil {
		c.Chime = d.Chime
	}
	if c.Tick == "" {
		c.Tick = d.Tick
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// ChimeEnabled reports whether transitions should ring the bell.
func (c *Config) ChimeEnabled() bool {
	return c.Chime == nil || *c.Chime
}

var validate = validator.New()

// tickParser matches the parser the scheduler builds with cron.WithSeconds.
var tickParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks struct constraints, the timezone and the tick spec.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if _, err := tickParser.Parse(c.Tick); err != nil {
		return fmt.Errorf("config: tick %q: %w", c.Tick, err)
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Resolve makes the data file paths absolute relative to base when they
// are relative. Used when the config lives outside the working directory.
// Feed URLs are left alone.
func (c *Config) Resolve(base string) {
	for _, p := range []*string{&c.Timetable, &c.CacheDir, &c.Theme, &c.Bell} {
		if *p != "" && !filepath.IsAbs(*p) && !strings.Contains(*p, "://") {
			*p = filepath.Join(base, *p)
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timertable-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
