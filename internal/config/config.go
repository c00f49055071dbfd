// Package config loads per-project settings and resolves the project's port
// context.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/af/internal/core/portlayout"
)

// Defaults used when .af/config.yaml is absent or leaves a field empty.
const (
	DefaultSessionPrefix = "af"
	DefaultAgentCommand  = "claude"
)

// Project is the optional per-project configuration read from
// <project>/.af/config.yaml.
type Project struct {
	SessionPrefix string `yaml:"session_prefix"`
	AgentCommand  string `yaml:"agent_command"`
	WorktreeDir   string `yaml:"worktree_dir"`
}

// LoadProject reads .af/config.yaml from the project directory. A missing
// file yields the defaults; a malformed file is an error.
func LoadProject(projectPath string) (*Project, error) {
	cfg := &Project{}
	path := filepath.Join(projectPath, ".af", "config.yaml")

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.SessionPrefix == "" {
		cfg.SessionPrefix = DefaultSessionPrefix
	}
	if cfg.AgentCommand == "" {
		cfg.AgentCommand = DefaultAgentCommand
	}
	if cfg.WorktreeDir == "" {
		cfg.WorktreeDir = filepath.Join(projectPath, ".af", "worktrees")
	}
	return cfg, nil
}

// Save writes the configuration to <project>/.af/config.yaml.
func Save(projectPath string, cfg *Project) error {
	dir := filepath.Join(projectPath, ".af")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create .af dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Ports is the resolved port context for one project in one process. It is
// always built explicitly from a registered base; nothing caches it across
// projects.
type Ports struct {
	Layout portlayout.Layout
}

// ResolvePorts builds the port context for a registered base port.
func ResolvePorts(base int) (Ports, error) {
	if !portlayout.ValidBase(base) {
		return Ports{}, fmt.Errorf("invalid base port %d", base)
	}
	return Ports{Layout: portlayout.Layout{Base: base}}, nil
}
