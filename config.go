package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	WorktreeTemplate   string `json:"worktree_template,omitempty"`
	CommandTimeoutSecs int    `json:"command_timeout_secs,omitempty"`
	SettleDelayMS      int    `json:"settle_delay_ms,omitempty"`
	DefaultBranchType  string `json:"default_branch_type,omitempty"`
}

const defaultWorktreeTemplate = "{repo}.wt/{branch}"
const defaultSettleDelay = 2 * time.Second

func DefaultConfig() Config {
	return Config{
		WorktreeTemplate:   defaultWorktreeTemplate,
		CommandTimeoutSecs: int(defaultCommandTimeout / time.Second),
		SettleDelayMS:      int(defaultSettleDelay / time.Millisecond),
		DefaultBranchType:  "both",
	}
}

func LoadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	c.WorktreeTemplate = strings.TrimSpace(c.WorktreeTemplate)
	if c.WorktreeTemplate == "" {
		c.WorktreeTemplate = defaultWorktreeTemplate
	}
	if c.CommandTimeoutSecs <= 0 {
		c.CommandTimeoutSecs = int(defaultCommandTimeout / time.Second)
	}
	if c.SettleDelayMS <= 0 {
		c.SettleDelayMS = int(defaultSettleDelay / time.Millisecond)
	}
	c.DefaultBranchType = strings.ToLower(strings.TrimSpace(c.DefaultBranchType))
	if _, ok := ParseBranchType(c.DefaultBranchType); !ok {
		c.DefaultBranchType = "both"
	}
	return c
}

func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSecs) * time.Second
}

// SettleDelay is the pause between switching away from an active worktree
// and removing it. ARBO_SETTLE_DELAY_MS overrides the configured value,
// mainly so tests do not sleep for real.
func (c Config) SettleDelay() time.Duration {
	if raw := strings.TrimSpace(os.Getenv("ARBO_SETTLE_DELAY_MS")); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

func ConfigExists() (bool, error) {
	path, err := configPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func SaveConfig(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg.withDefaults(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func arboHomeDir() (string, error) {
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return "", errors.New("HOME not set")
	}
	return filepath.Join(home, ".arbo"), nil
}

func configPath() (string, error) {
	home, err := arboHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.json"), nil
}
