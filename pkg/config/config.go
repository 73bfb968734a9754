// Package config persists the tool configuration and the per-build
// records under the user's config home.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v2"

	"github.com/cabforge/cab/pkg/global"
	"github.com/cabforge/cab/pkg/util/files"
)

// ErrNoConfig means `cab init` has not been run yet.
var ErrNoConfig = errors.New("no configuration found, run 'cab init' first")

// Registry is where final images get pushed, when configured.
type Registry struct {
	URL      string `yaml:"url"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Config is the tool configuration, stored as YAML.
type Config struct {
	// InstallsDir holds one install tree per build; the pipeline
	// transfers <installs>/<name> into the raw image.
	InstallsDir string    `yaml:"installs"`
	CcacheDir   string    `yaml:"ccache,omitempty"`
	CcacheSize  string    `yaml:"ccache_size,omitempty"`
	Registry    *Registry `yaml:"registry,omitempty"`
}

// Dir is the cab config directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, global.ConfigDirName)
}

// Path is the tool config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func buildsDir() string {
	return filepath.Join(Dir(), "builds")
}

// Exists reports whether a tool config has been written.
func Exists() (bool, error) {
	return files.Exists(Path())
}

// Load reads the tool config, or ErrNoConfig when absent.
func Load() (*Config, error) {
	exists, err := Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNoConfig
	}
	text, err := os.ReadFile(Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Path(), err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(text, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", Path(), err)
	}
	return cfg, nil
}

// Save writes the tool config, creating the config directory as
// needed.
func (c *Config) Save() error {
	text, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(Path(), text, 0o600)
}

// InstallDirFor is the install tree of one build.
func (c *Config) InstallDirFor(buildname string) string {
	return filepath.Join(c.InstallsDir, buildname)
}

// HasRegistry reports whether a push target is configured.
func (c *Config) HasRegistry() bool {
	return c.Registry != nil && c.Registry.URL != ""
}
