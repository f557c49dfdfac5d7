// Package config defines the femurtrack configuration file.
package config

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/kneelab/femurtrack/logging"
)

// Defaults used when a field is left unset.
const (
	DefaultFemurID           = 1
	DefaultStylusID          = 2
	DefaultCatalogPath       = "Attune_5_Left_Points.csv"
	DefaultExportDir         = "."
	DefaultConnectionTimeout = 15 * time.Second
)

// Config is the femurtrack configuration.
type Config struct {
	// ServerAddress and LocalAddress identify the motion capture server and the interface it
	// streams to.
	ServerAddress string `json:"server_address,omitempty"`
	LocalAddress  string `json:"local_address,omitempty"`

	// FemurID and StylusID are rigid body ids as numbered by the capture software. Zero is a
	// valid id; the defaults apply only when the key is absent from the file.
	FemurID  int `json:"femur_id"`
	StylusID int `json:"stylus_id"`

	CatalogPath string `json:"catalog_path,omitempty"`
	ExportDir   string `json:"export_dir,omitempty"`

	// ConnectionTimeout is how long the feed may be silent before it is reported as lost. Zero
	// disables the check.
	ConnectionTimeout string `json:"connection_timeout,omitempty"`
	// ReplayInterval paces replayed frames. Empty replays as fast as possible.
	ReplayInterval string `json:"replay_interval,omitempty"`

	// LogLevel is one of debug, info, warn or error. Debug overrides it.
	LogLevel string `json:"log_level,omitempty"`
	Debug    bool   `json:"debug,omitempty"`

	connectionTimeout time.Duration
	replayInterval    time.Duration
	logLevel          logging.Level
}

// New returns an unvalidated config holding the default rigid body ids. Files are decoded over
// it so that an id present in the file, zero included, replaces the default.
func New() *Config {
	return &Config{FemurID: DefaultFemurID, StylusID: DefaultStylusID}
}

// Default returns a validated config with every default applied.
func Default() *Config {
	cfg := New()
	if err := cfg.Validate(""); err != nil {
		panic(err)
	}
	return cfg
}

// Validate fills in defaults and ensures the config is usable.
func (c *Config) Validate(path string) error {
	if c.CatalogPath == "" {
		c.CatalogPath = DefaultCatalogPath
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}

	if c.FemurID < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("femur_id must not be negative, got %d", c.FemurID))
	}
	if c.StylusID < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("stylus_id must not be negative, got %d", c.StylusID))
	}
	if c.FemurID == c.StylusID {
		return utils.NewConfigValidationError(path, errors.Errorf("femur_id and stylus_id must differ, both are %d", c.FemurID))
	}

	c.connectionTimeout = DefaultConnectionTimeout
	if c.ConnectionTimeout != "" {
		d, err := time.ParseDuration(c.ConnectionTimeout)
		if err != nil {
			return utils.NewConfigValidationError(path, errors.Wrap(err, "error validating connection_timeout"))
		}
		if d < 0 {
			return utils.NewConfigValidationError(path, errors.New("connection_timeout must not be negative"))
		}
		c.connectionTimeout = d
	}

	c.replayInterval = 0
	if c.ReplayInterval != "" {
		d, err := time.ParseDuration(c.ReplayInterval)
		if err != nil {
			return utils.NewConfigValidationError(path, errors.Wrap(err, "error validating replay_interval"))
		}
		if d < 0 {
			return utils.NewConfigValidationError(path, errors.New("replay_interval must not be negative"))
		}
		c.replayInterval = d
	}

	c.logLevel = logging.INFO
	if c.LogLevel != "" {
		level, err := logging.LevelFromString(c.LogLevel)
		if err != nil {
			return utils.NewConfigValidationError(path, errors.Wrap(err, "error validating log_level"))
		}
		c.logLevel = level
	}
	if c.Debug {
		c.logLevel = logging.DEBUG
	}
	return nil
}

// ConnectionTimeoutDuration returns the parsed connection timeout. Only valid after Validate.
func (c *Config) ConnectionTimeoutDuration() time.Duration {
	return c.connectionTimeout
}

// Level returns the log level in effect. Only valid after Validate.
func (c *Config) Level() logging.Level {
	return c.logLevel
}

// ReplayIntervalDuration returns the parsed replay interval. Only valid after Validate.
func (c *Config) ReplayIntervalDuration() time.Duration {
	return c.replayInterval
}
