// Package config loads site.yaml.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/verkaro/nibl/internal/defaults"
)

// SiteConfig holds the configuration from the site.yaml file.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	BaseURL     string `yaml:"baseurl"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`

	// DefaultFrontMatter maps path patterns to front matter applied to
	// matching pages. Order is kept from the file.
	DefaultFrontMatter defaults.Rules `yaml:"default_front_matter"`
}

// LoadSiteConfig reads and parses the site config at path.
func LoadSiteConfig(path string) (SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, errors.Wrapf(err, "could not read config file at %s", path)
	}
	return ParseSiteConfig(path, data)
}

// ParseSiteConfig parses site config bytes. name is only used in errors.
func ParseSiteConfig(name string, data []byte) (SiteConfig, error) {
	cfg := SiteConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, errors.Wrapf(err, "could not parse config file %s", name)
	}
	return cfg, nil
}
