// Package config loads the optional canopy.yaml project file for the
// preview tool and resolves defaults from the enclosing Go module.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config represents the optional canopy.yaml configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Preview PreviewConfig `yaml:"preview"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// AppConfig contains project metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// PreviewConfig contains default render settings for the preview tool.
type PreviewConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// RuntimeConfig pins runtime requirements.
type RuntimeConfig struct {
	// MinVersion is the minimum runtime version the scene requires,
	// as a semver string ("v0.2.0").
	MinVersion string `yaml:"minVersion,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string
	Width      int
	Height     int
	Output     string
	MinVersion string
}

// LoadOptional reads canopy.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "canopy.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read canopy.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse canopy.yaml: %w", err)
	}
	return &cfg, nil
}

// Resolve loads canopy.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	width := cfg.Preview.Width
	if width <= 0 {
		width = 800
	}
	height := cfg.Preview.Height
	if height <= 0 {
		height = 600
	}
	output := strings.TrimSpace(cfg.Preview.Output)
	if output == "" {
		output = "preview.png"
	}

	minVersion := strings.TrimSpace(cfg.Runtime.MinVersion)
	if minVersion != "" && !semver.IsValid(minVersion) {
		return nil, fmt.Errorf("runtime.minVersion %q is not a valid semver string", minVersion)
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		AppName:    appName,
		Width:      width,
		Height:     height,
		Output:     output,
		MinVersion: minVersion,
	}, nil
}

// CheckRuntimeVersion verifies the running tool satisfies the config's
// runtime.minVersion pin. A missing pin always passes.
func (r *Resolved) CheckRuntimeVersion(version string) error {
	if r.MinVersion == "" {
		return nil
	}
	if !semver.IsValid(version) {
		return fmt.Errorf("runtime version %q is not a valid semver string", version)
	}
	if semver.Compare(version, r.MinVersion) < 0 {
		return fmt.Errorf("runtime version %s is older than required minimum %s", version, r.MinVersion)
	}
	return nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	parts := strings.Split(modulePath, "/")
	if len(parts) > 0 && parts[len(parts)-1] != "" {
		base = parts[len(parts)-1]
	}
	if base == "" {
		return "canopy_app"
	}
	return base
}
