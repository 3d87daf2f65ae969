// Package config manages the catalog workspace configuration and the
// .eqcat directory structure. It handles loading, saving, and initializing
// the workspace configuration.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	WorkspaceDir = ".eqcat"
	ConfigFile   = "config"
	DatabaseFile = "catalog.db"
)

// Config represents the workspace configuration
type Config struct {
	ProjectID string `toml:"project_id"`
	Operator  string `toml:"operator"` // actor name stamped onto audit entries
	Origin    string `toml:"origin"`   // origin tag for audit entries, defaults to the hostname
	path      string // path to .eqcat directory
}

// FindWorkspaceRoot finds the .eqcat directory by walking up from the
// current directory
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		wsPath := filepath.Join(dir, WorkspaceDir)
		if info, err := os.Stat(wsPath); err == nil && info.IsDir() {
			return wsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not an eqcat workspace (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .eqcat directory
func Load() (*Config, error) {
	wsPath, err := FindWorkspaceRoot()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(wsPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = wsPath
	return &cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// WorkspacePath returns the path to the .eqcat directory
func (c *Config) WorkspacePath() string {
	return c.path
}

// DatabasePath returns the path to the sqlite database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// Initialize creates a new .eqcat directory with initial configuration
func Initialize(projectID, operator string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	wsPath := filepath.Join(cwd, WorkspaceDir)

	// Check if already initialized
	if _, err := os.Stat(wsPath); err == nil {
		return nil, fmt.Errorf("eqcat workspace already exists")
	}

	if err := os.MkdirAll(wsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .eqcat directory: %w", err)
	}

	cfg := &Config{
		ProjectID: projectID,
		Operator:  operator,
		path:      wsPath,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(wsPath)
		return nil, err
	}

	return cfg, nil
}

// PerformedBy returns the actor name for audit entries: the configured
// operator, or the OS user when none is configured.
func (c *Config) PerformedBy() string {
	if c.Operator != "" {
		return c.Operator
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

// Source returns the origin tag for audit entries: the configured origin,
// or the host machine name when none is configured.
func (c *Config) Source() string {
	if c.Origin != "" {
		return c.Origin
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "eqcat"
}
