package config

import (
	"fmt"
	"time"
)

// File represents the structure of the .domaincrawl configuration file.
// Every field is optional; only the fields present override the defaults.
type File struct {
	Seeds              []string `yaml:"seeds,omitempty"`
	Keywords           []string `yaml:"keywords,omitempty"`
	ResourceExtensions []string `yaml:"resourceExtensions,omitempty"`

	OutputDir string `yaml:"outputDir,omitempty"`
	Scheme    string `yaml:"scheme,omitempty"`

	// PageTimeout and ResourceTimeout use Go duration syntax ("3s", "500ms").
	PageTimeout     string `yaml:"pageTimeout,omitempty"`
	ResourceTimeout string `yaml:"resourceTimeout,omitempty"`

	UserAgent      string   `yaml:"userAgent,omitempty"`
	AcceptLanguage []string `yaml:"acceptLanguage,omitempty"`

	Workers     int   `yaml:"workers,omitempty"`
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Pointers distinguish "false" from "not set".
	FollowAssets   *bool `yaml:"followAssets,omitempty"`
	WriteEndpoints *bool `yaml:"writeEndpoints,omitempty"`

	MetricsAddr string `yaml:"metricsAddr,omitempty"`
	DBDir       string `yaml:"dbDir,omitempty"`
}

// Apply overlays the fields set in the file onto cfg.
func (f *File) Apply(cfg *Config) error {
	if len(f.Seeds) > 0 {
		cfg.Seeds = append([]string(nil), f.Seeds...)
	}
	if len(f.Keywords) > 0 {
		cfg.Keywords = append([]string(nil), f.Keywords...)
	}
	if len(f.ResourceExtensions) > 0 {
		cfg.ResourceExtensions = append([]string(nil), f.ResourceExtensions...)
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.Scheme != "" {
		cfg.Scheme = f.Scheme
	}
	if f.PageTimeout != "" {
		d, err := parseTimeout(f.PageTimeout)
		if err != nil {
			return fmt.Errorf("pageTimeout: %w", err)
		}
		cfg.PageTimeout = d
	}
	if f.ResourceTimeout != "" {
		d, err := parseTimeout(f.ResourceTimeout)
		if err != nil {
			return fmt.Errorf("resourceTimeout: %w", err)
		}
		cfg.ResourceTimeout = d
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if len(f.AcceptLanguage) > 0 {
		cfg.AcceptLanguage = append([]string(nil), f.AcceptLanguage...)
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	if f.MaxBodySize != 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.FollowAssets != nil {
		cfg.FollowAssets = *f.FollowAssets
	}
	if f.WriteEndpoints != nil {
		cfg.WriteEndpoints = *f.WriteEndpoints
	}
	if f.MetricsAddr != "" {
		cfg.MetricsAddr = f.MetricsAddr
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, ErrInvalidTimeout
	}
	return d, nil
}
