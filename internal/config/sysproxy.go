package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rennerdo30/sysproxy/internal/logging"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// Config is the sysproxy tool configuration.
type Config struct {
	Logging  logging.Config  `yaml:"logging" json:"logging"`
	API      APIConfig       `yaml:"api" json:"api"`
	Metrics  MetricsConfig   `yaml:"metrics" json:"metrics"`
	Profiles []ProfileConfig `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// APIConfig configures the local REST API started by "sysproxy serve".
type APIConfig struct {
	Listen string `yaml:"listen" json:"listen"`
	Token  string `yaml:"token,omitempty" json:"token,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint on the API listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// ProfileConfig is a named proxy setting that can be applied in one step.
type ProfileConfig struct {
	Name   string `yaml:"name" json:"name"`
	Mode   string `yaml:"mode" json:"mode"` // direct, manual, auto
	Host   string `yaml:"host,omitempty" json:"host,omitempty"`
	Port   uint16 `yaml:"port,omitempty" json:"port,omitempty"`
	Bypass string `yaml:"bypass,omitempty" json:"bypass,omitempty"`
	URL    string `yaml:"url,omitempty" json:"url,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logging: logging.DefaultConfig(),
		API: APIConfig{
			Listen: "127.0.0.1:7390",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Listen != "" {
		if _, _, err := net.SplitHostPort(c.API.Listen); err != nil {
			errs = append(errs, fmt.Errorf("api.listen: %w", err))
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/': %q", c.Metrics.Path))
	}

	seen := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profiles[%d]: %w", i, err))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("profiles[%d]: duplicate profile name %q", i, p.Name))
		}
		seen[p.Name] = true
	}

	return errors.Join(errs...)
}

// Profile returns the profile called name.
func (c *Config) Profile(name string) (ProfileConfig, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileConfig{}, false
}

// Validate checks that the profile has the fields its mode needs.
func (p ProfileConfig) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}

	mode, err := sysproxy.ParseMode(p.Mode)
	if err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	switch mode {
	case sysproxy.ModeManual:
		if strings.TrimSpace(p.Host) == "" {
			return fmt.Errorf("profile %q: host is required for manual mode", p.Name)
		}
		if p.Port == 0 {
			return fmt.Errorf("profile %q: port is required for manual mode", p.Name)
		}
	case sysproxy.ModeAuto:
		if strings.TrimSpace(p.URL) == "" {
			return fmt.Errorf("profile %q: url is required for auto mode", p.Name)
		}
	}

	return nil
}

// State converts the profile into the proxy state it describes.
func (p ProfileConfig) State() (sysproxy.State, error) {
	if err := p.Validate(); err != nil {
		return sysproxy.State{}, err
	}

	mode, _ := sysproxy.ParseMode(p.Mode)
	switch mode {
	case sysproxy.ModeManual:
		return sysproxy.ManualState(p.Host, p.Port, p.Bypass), nil
	case sysproxy.ModeAuto:
		return sysproxy.AutoState(p.URL), nil
	default:
		return sysproxy.DirectState(), nil
	}
}
