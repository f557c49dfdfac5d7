package config

import (
	"bytes"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/kneelab/femurtrack/logging"
)

// Read reads a config from the given file, expanding environment variable references first.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from. The config is JSON5, so comments and trailing commas are allowed.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", originalPath)
	}
	cfg := New()
	if err := json5.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	logger.Debugw("config loaded",
		"path", originalPath,
		"femur_id", cfg.FemurID,
		"stylus_id", cfg.StylusID,
		"catalog_path", cfg.CatalogPath,
	)
	return cfg, nil
}
