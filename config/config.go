// Package config loads and validates the uploader's YAML configuration.
// Provider presets fill in the well-known endpoints so a destination entry
// only needs its credentials.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	werrors "github.com/pmcgeorge/weewx/errors"
)

// Provider names accepted in a destination entry
const (
	ProviderWunderground = "wunderground"
	ProviderPWSWeather   = "pwsweather"
	ProviderAmbient      = "ambient" // generic Ambient endpoint, URL required
	ProviderCWOP         = "cwop"
)

// Well-known provider endpoints
const (
	WundergroundURL          = "https://weatherstation.wunderground.com/weatherstation/updateweatherstation.php"
	WundergroundRapidFireURL = "https://rtupdate.wunderground.com/weatherstation/updateweatherstation.php"
	PWSWeatherURL            = "https://www.pwsweather.com/pwsupdate/pwsupdate.php"
)

// DefaultCWOPServers are tried in order; the second is the legacy
// plain-telnet port kept as a fallback.
var DefaultCWOPServers = []string{"cwop.aprs.net:14580", "cwop.aprs.net:23"}

// Config is the root of the YAML document
type Config struct {
	Station      StationConfig       `yaml:"station"`
	Database     DatabaseConfig      `yaml:"database"`
	Metrics      MetricsConfig       `yaml:"metrics"`
	Destinations []DestinationConfig `yaml:"destinations"`
}

// StationConfig describes the physical station; shared by every
// destination
type StationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	// Hardware names the weather station model, e.g. "Vantage"
	Hardware string `yaml:"hardware"`
	// TimeZone resolves the local start-of-day for daily rain totals;
	// empty means the system time zone
	TimeZone string `yaml:"time_zone"`
	// SoftwareName and SoftwareVersion identify this uploader to the
	// providers
	SoftwareName    string `yaml:"software_name"`
	SoftwareVersion string `yaml:"software_version"`
}

// SoftwareType is the combined software tag Ambient providers expect
func (s StationConfig) SoftwareType() string {
	if s.SoftwareVersion == "" {
		return s.SoftwareName
	}
	return s.SoftwareName + "-" + s.SoftwareVersion
}

// DatabaseConfig points at the archive used for rain-total augmentation.
// An empty DSN disables augmentation.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// Table overrides the archive table name
	Table string `yaml:"table"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DestinationConfig is one upload target. Which fields apply depends on
// the provider: Ambient providers take URL/station/password, CWOP takes
// servers/station/passcode.
type DestinationConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	Enabled  *bool  `yaml:"enabled"`

	Station  string `yaml:"station"`
	Password string `yaml:"password"`
	Passcode string `yaml:"passcode"`

	URL       string   `yaml:"url"`
	Servers   []string `yaml:"servers"`
	RapidFire bool     `yaml:"rapidfire"`

	StaleSeconds        *int64 `yaml:"stale_seconds"`
	PostIntervalSeconds *int64 `yaml:"post_interval_seconds"`

	MaxTries       int     `yaml:"max_tries"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxBacklog     *int    `yaml:"max_backlog"`
	LogSuccess     *bool   `yaml:"log_success"`
	LogFailure     *bool   `yaml:"log_failure"`
	PostsPerMinute float64 `yaml:"posts_per_minute"`

	ReconnectOnSendFailure bool `yaml:"reconnect_on_send_failure"`
}

// IsEnabled reports whether the destination should be built; entries are
// enabled unless switched off.
func (d DestinationConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// IsAmbient reports whether the destination speaks the Ambient protocol
func (d DestinationConfig) IsAmbient() bool {
	switch d.Provider {
	case ProviderWunderground, ProviderPWSWeather, ProviderAmbient:
		return true
	}
	return false
}

// Load reads, decodes and validates a configuration file, applying
// provider presets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.Wrap(err, "config", "Load", "read file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, werrors.WrapInvalid(err, "config", "Load", "parse yaml")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills provider presets and unset knobs
func (c *Config) ApplyDefaults() {
	if c.Station.SoftwareName == "" {
		c.Station.SoftwareName = "weewx"
	}
	for i := range c.Destinations {
		c.Destinations[i].applyDefaults()
	}
}

func (d *DestinationConfig) applyDefaults() {
	d.Provider = strings.ToLower(d.Provider)
	if d.Name == "" && d.Provider != "" {
		d.Name = d.Provider
	}

	switch d.Provider {
	case ProviderWunderground:
		if d.URL == "" {
			if d.RapidFire {
				d.URL = WundergroundRapidFireURL
			} else {
				d.URL = WundergroundURL
			}
		}
		if d.RapidFire {
			d.applyRapidFireDefaults()
		}
	case ProviderPWSWeather:
		if d.URL == "" {
			d.URL = PWSWeatherURL
		}
	case ProviderCWOP:
		if len(d.Servers) == 0 {
			d.Servers = append([]string(nil), DefaultCWOPServers...)
		}
	}

	if d.MaxTries == 0 {
		d.MaxTries = 3
	}
	if d.TimeoutSeconds == 0 {
		d.TimeoutSeconds = 60
	}
}

// applyRapidFireDefaults quiets the knobs for rapid updates: only the
// freshest record matters, a missed post is not worth retrying or logging.
func (d *DestinationConfig) applyRapidFireDefaults() {
	if d.MaxTries == 0 {
		d.MaxTries = 1
	}
	if d.MaxBacklog == nil {
		backlog := 0
		d.MaxBacklog = &backlog
	}
	off := false
	if d.LogSuccess == nil {
		d.LogSuccess = &off
	}
	if d.LogFailure == nil {
		d.LogFailure = &off
	}
}

// Validate checks the whole document. Disabled destinations are not
// validated: a half-filled entry kept around switched off is fine.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, d := range c.Destinations {
		if !d.IsEnabled() {
			continue
		}
		if err := d.validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return werrors.WrapInvalid(
				fmt.Errorf("%w: duplicate destination name %q", werrors.ErrInvalidConfig, d.Name),
				"config", "Validate", "destinations")
		}
		seen[d.Name] = true
	}
	return nil
}

func (d DestinationConfig) validate() error {
	switch {
	case d.IsAmbient():
		if d.URL == "" {
			return werrors.WrapInvalid(
				fmt.Errorf("%w: destination %q needs a url", werrors.ErrMissingConfig, d.Name),
				"config", "Validate", "destinations")
		}
		if d.Station == "" || d.Password == "" {
			return werrors.WrapInvalid(
				fmt.Errorf("%w: destination %q needs station and password", werrors.ErrMissingConfig, d.Name),
				"config", "Validate", "destinations")
		}
	case d.Provider == ProviderCWOP:
		if d.Station == "" {
			return werrors.WrapInvalid(
				fmt.Errorf("%w: destination %q needs a station", werrors.ErrMissingConfig, d.Name),
				"config", "Validate", "destinations")
		}
	default:
		return werrors.WrapInvalid(
			fmt.Errorf("%w: destination %q has unknown provider %q", werrors.ErrInvalidConfig, d.Name, d.Provider),
			"config", "Validate", "destinations")
	}
	return nil
}
