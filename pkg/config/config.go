// Package config loads airlockd's runtime configuration: the external
// collaborator surface named in spec.md §6.3 ({runtimeMode,
// policyFilePath, artifactRoot}) plus the process-level tunables
// SPEC_FULL.md's ambient stack adds (ring buffer sizes, TTLs, log
// destination). Grounded on the teacher's pkg/config: a DefaultConfig,
// a YAML-merging Load/LoadFromPath pair, and env var overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/airlockhq/airlock/pkg/policy"
)

// Config is the complete airlockd process configuration.
type Config struct {
	RuntimeMode    string        `yaml:"runtime_mode"`
	PolicyFilePath string        `yaml:"policy_file_path"`
	ArtifactRoot   string        `yaml:"artifact_root"`
	Listen         string        `yaml:"listen"`
	Session        SessionConfig `yaml:"session"`
	EventLog       EventLogConfig `yaml:"event_log"`
	Launch         LaunchConfig  `yaml:"launch"`
	Logging        LoggingConfig `yaml:"logging"`
	Dispatch       DispatchConfig `yaml:"dispatch"`
}

// SessionConfig controls session.Manager TTL eviction.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// EventLogConfig controls the eventlog.Log ring buffer.
type EventLogConfig struct {
	Capacity int `yaml:"capacity"`
}

// LaunchConfig bounds launch orchestration timeouts.
type LaunchConfig struct {
	DefaultTimeoutMs      int64 `yaml:"default_timeout_ms"`
	DefaultFirstWindowMs  int64 `yaml:"default_first_window_ms"`
	LineBufferCapacity    int   `yaml:"line_buffer_capacity"`
}

// LoggingConfig controls where structured log events are written.
type LoggingConfig struct {
	Destination string `yaml:"destination"` // "stderr" or a file path
	MinLevel    string `yaml:"min_level"`
}

// DispatchConfig controls tool.Dispatcher timeouts.
type DispatchConfig struct {
	DefaultTimeoutMs int64            `yaml:"default_timeout_ms"`
	PerToolTimeoutMs map[string]int64 `yaml:"per_tool_timeout_ms"`
}

// DefaultConfig returns sensible defaults, mirroring the mode-keyed
// defaults in policy.DefaultSafetyPolicy (standard mode, 2h TTL).
func DefaultConfig() *Config {
	return &Config{
		RuntimeMode:  "standard",
		ArtifactRoot: "./airlock-artifacts",
		Listen:       "127.0.0.1:4488",
		Session: SessionConfig{
			TTL: 2 * time.Hour,
		},
		EventLog: EventLogConfig{
			Capacity: 1000,
		},
		Launch: LaunchConfig{
			DefaultTimeoutMs:     60_000,
			DefaultFirstWindowMs: 15_000,
			LineBufferCapacity:   500,
		},
		Logging: LoggingConfig{
			Destination: "stderr",
			MinLevel:    "info",
		},
		Dispatch: DispatchConfig{
			DefaultTimeoutMs: 30_000,
			PerToolTimeoutMs: map[string]int64{},
		},
	}
}

// Load loads configuration from the default project location
// (./.airlock/config.yaml), falling back to defaults if absent.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	path := "./.airlock/config.yaml"
	if err := loadAndMerge(cfg, path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	mergeConfigs(cfg, &override)
	return nil
}

func mergeConfigs(base, override *Config) {
	if override.RuntimeMode != "" {
		base.RuntimeMode = override.RuntimeMode
	}
	if override.PolicyFilePath != "" {
		base.PolicyFilePath = override.PolicyFilePath
	}
	if override.ArtifactRoot != "" {
		base.ArtifactRoot = override.ArtifactRoot
	}
	if override.Listen != "" {
		base.Listen = override.Listen
	}
	if override.Session.TTL != 0 {
		base.Session.TTL = override.Session.TTL
	}
	if override.EventLog.Capacity != 0 {
		base.EventLog.Capacity = override.EventLog.Capacity
	}
	if override.Launch.DefaultTimeoutMs != 0 {
		base.Launch.DefaultTimeoutMs = override.Launch.DefaultTimeoutMs
	}
	if override.Launch.DefaultFirstWindowMs != 0 {
		base.Launch.DefaultFirstWindowMs = override.Launch.DefaultFirstWindowMs
	}
	if override.Launch.LineBufferCapacity != 0 {
		base.Launch.LineBufferCapacity = override.Launch.LineBufferCapacity
	}
	if override.Logging.Destination != "" {
		base.Logging.Destination = override.Logging.Destination
	}
	if override.Logging.MinLevel != "" {
		base.Logging.MinLevel = override.Logging.MinLevel
	}
	if override.Dispatch.DefaultTimeoutMs != 0 {
		base.Dispatch.DefaultTimeoutMs = override.Dispatch.DefaultTimeoutMs
	}
	for k, v := range override.Dispatch.PerToolTimeoutMs {
		if base.Dispatch.PerToolTimeoutMs == nil {
			base.Dispatch.PerToolTimeoutMs = map[string]int64{}
		}
		base.Dispatch.PerToolTimeoutMs[k] = v
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIRLOCK_RUNTIME_MODE"); v != "" {
		cfg.RuntimeMode = v
	}
	if v := os.Getenv("AIRLOCK_POLICY_FILE"); v != "" {
		cfg.PolicyFilePath = v
	}
	if v := os.Getenv("AIRLOCK_ARTIFACT_ROOT"); v != "" {
		cfg.ArtifactRoot = v
	}
	if v := os.Getenv("AIRLOCK_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("AIRLOCK_SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Session.TTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("AIRLOCK_EVENT_LOG_CAPACITY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EventLog.Capacity = n
		}
	}
	if v := os.Getenv("AIRLOCK_LOG_DESTINATION"); v != "" {
		cfg.Logging.Destination = v
	}
	if v := os.Getenv("AIRLOCK_LOG_MIN_LEVEL"); v != "" {
		cfg.Logging.MinLevel = v
	}
}

// Validate rejects a config whose runtime mode doesn't parse and whose
// tunables are non-positive.
func (c *Config) Validate() error {
	if _, err := policy.ParseMode(c.RuntimeMode); err != nil {
		return fmt.Errorf("runtime_mode: %w", err)
	}
	if strings.TrimSpace(c.ArtifactRoot) == "" {
		return fmt.Errorf("artifact_root must not be empty")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.EventLog.Capacity <= 0 {
		return fmt.Errorf("event_log.capacity must be positive")
	}
	if c.Launch.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("launch.default_timeout_ms must be positive")
	}
	if c.Launch.DefaultFirstWindowMs <= 0 {
		return fmt.Errorf("launch.default_first_window_ms must be positive")
	}
	if c.Dispatch.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("dispatch.default_timeout_ms must be positive")
	}
	return nil
}

// Mode parses the configured runtime mode.
func (c *Config) Mode() policy.Mode {
	mode, _ := policy.ParseMode(c.RuntimeMode)
	return mode
}

// DispatchPerToolTimeouts converts the millisecond map to time.Duration,
// the shape tool.Timeout's DispatchOptions.PerToolTimeout expects.
func (c *Config) DispatchPerToolTimeouts() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.Dispatch.PerToolTimeoutMs))
	for k, v := range c.Dispatch.PerToolTimeoutMs {
		out[k] = time.Duration(v) * time.Millisecond
	}
	return out
}
