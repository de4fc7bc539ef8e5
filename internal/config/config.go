package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/clearmob/internal/domain/clearing"
	"github.com/oshokin/clearmob/internal/logger"
)

// Config holds the settings shared by the clearmob daemon and CLI.
type Config struct {
	// ServerAddress is the gRPC address of the daemon.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is the path to the JSON file storing the enabled flag.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of the daemon logger.
	LogLevel string `yaml:"log_level"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// World selects the entity source: "memory" or "sqlite".
	World string `yaml:"world"`
	// WorldDB is the SQLite database path used when World is "sqlite".
	WorldDB string `yaml:"world_db,omitempty"`
	// SweepTimeout bounds a single sweep against the entity source.
	SweepTimeout time.Duration `yaml:"sweep_timeout"`
	// Admins lists usernames holding the admin capability.
	Admins []string `yaml:"admins"`
	// Enabled is the initial enabled flag when no state file exists yet.
	Enabled *bool `yaml:"enabled,omitempty"`

	// ClearInterval is the cycle length in seconds.
	ClearInterval int `yaml:"clear-interval"`
	// Entities lists kinds, "!hasname KIND" directives and "ALL_ENTITIES".
	Entities []string `yaml:"entities"`
	// WarningInterval1 is the final warning threshold in seconds.
	WarningInterval1 int `yaml:"warning-interval-1"`
	// WarningInterval2 is the earlier warning threshold in seconds.
	WarningInterval2 int `yaml:"warning-interval-2"`
	// Warnings holds the broadcast templates.
	Warnings Warnings `yaml:"warnings"`
}

// Warnings holds the broadcast templates.
type Warnings struct {
	BeforeClear1 string `yaml:"before-clear-1"`
	BeforeClear2 string `yaml:"before-clear-2"`
	AfterClear   string `yaml:"after-clear"`
}

const (
	// DefaultConfigFilename is the default settings filename.
	DefaultConfigFilename = "clearmob-settings.yaml"

	// DefaultStateFilename is the default filename for the state JSON.
	DefaultStateFilename = "clearmob-state.json"

	// DefaultWorldFilename is the default SQLite world database.
	DefaultWorldFilename = "clearmob-world.db"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultSweepTimeout bounds a sweep when not configured.
	DefaultSweepTimeout = 10 * time.Second

	// DefaultClearInterval is the cycle length in seconds when not configured.
	DefaultClearInterval = 300

	// DefaultWarningInterval1 is the final warning threshold when neither
	// threshold is configured.
	DefaultWarningInterval1 = 10
	// DefaultWarningInterval2 is the earlier warning threshold when neither
	// threshold is configured.
	DefaultWarningInterval2 = 30

	// DefaultFilePermissions is used for every file the daemon writes.
	DefaultFilePermissions = 0o600

	// WorldMemory keeps entities in process memory.
	WorldMemory = "memory"
	// WorldSQLite keeps entities in a SQLite database.
	WorldSQLite = "sqlite"
)

// Default broadcast templates.
const (
	DefaultBeforeClear1 = "&cEntities will be cleared in &l%seconds%&r&c seconds!"
	DefaultBeforeClear2 = "&eEntities will be cleared in %seconds% seconds."
	DefaultAfterClear   = "&aCleared &l%count%&r&a entities."
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownWorld is returned for an unsupported world backend.
	errUnknownWorld = errors.New("unknown world backend")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
// Clear rules are validated later, when the clearing snapshot is built.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	switch settings.World {
	case "":
		settings.World = WorldMemory
	case WorldMemory, WorldSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownWorld, settings.World)
	}

	if settings.World == WorldSQLite && settings.WorldDB == "" {
		settings.WorldDB = DefaultWorldFilename
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.SweepTimeout <= 0 {
		settings.SweepTimeout = DefaultSweepTimeout
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.ClearInterval == 0 {
		settings.ClearInterval = DefaultClearInterval
	}

	// An absent pair would never warn.
	if settings.WarningInterval1 == 0 && settings.WarningInterval2 == 0 {
		settings.WarningInterval1 = DefaultWarningInterval1
		settings.WarningInterval2 = DefaultWarningInterval2
	}

	if settings.Warnings.BeforeClear1 == "" {
		settings.Warnings.BeforeClear1 = DefaultBeforeClear1
	}

	if settings.Warnings.BeforeClear2 == "" {
		settings.Warnings.BeforeClear2 = DefaultBeforeClear2
	}

	if settings.Warnings.AfterClear == "" {
		settings.Warnings.AfterClear = DefaultAfterClear
	}

	return nil
}

// IsEnabled returns the initial enabled flag, true unless set otherwise.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IsAdmin reports whether the username holds the admin capability.
func (c *Config) IsAdmin(username string) bool {
	return username != "" && slices.Contains(c.Admins, username)
}

// Rules extracts the clear rules in the form the clearing snapshot expects.
func (c *Config) Rules() clearing.Rules {
	return clearing.Rules{
		ClearInterval:    c.ClearInterval,
		Entities:         slices.Clone(c.Entities),
		WarningInterval1: c.WarningInterval1,
		WarningInterval2: c.WarningInterval2,
		BeforeClear1:     c.Warnings.BeforeClear1,
		BeforeClear2:     c.Warnings.BeforeClear2,
		AfterClear:       c.Warnings.AfterClear,
	}
}
