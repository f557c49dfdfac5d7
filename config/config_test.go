package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/kneelab/femurtrack/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.FemurID, test.ShouldEqual, 1)
	test.That(t, cfg.StylusID, test.ShouldEqual, 2)
	test.That(t, cfg.CatalogPath, test.ShouldEqual, "Attune_5_Left_Points.csv")
	test.That(t, cfg.ExportDir, test.ShouldEqual, ".")
	test.That(t, cfg.ConnectionTimeoutDuration(), test.ShouldEqual, 15*time.Second)
	test.That(t, cfg.ReplayIntervalDuration(), test.ShouldEqual, time.Duration(0))
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"same ids", func(c *Config) { c.FemurID, c.StylusID = 3, 3 }, "must differ"},
		{"same as default", func(c *Config) { c.StylusID = 1 }, "must differ"},
		{"both zero", func(c *Config) { c.FemurID, c.StylusID = 0, 0 }, "must differ"},
		{"negative femur", func(c *Config) { c.FemurID = -1 }, "femur_id must not be negative"},
		{"negative stylus", func(c *Config) { c.StylusID = -4 }, "stylus_id must not be negative"},
		{"bad timeout", func(c *Config) { c.ConnectionTimeout = "soon" }, "connection_timeout"},
		{"negative timeout", func(c *Config) { c.ConnectionTimeout = "-1s" }, "connection_timeout must not be negative"},
		{"bad interval", func(c *Config) { c.ReplayInterval = "fast" }, "replay_interval"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.modify(cfg)
			err := cfg.Validate("path")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
			test.That(t, err.Error(), test.ShouldContainSubstring, "path")
		})
	}

	cfg := New()
	cfg.ConnectionTimeout, cfg.ReplayInterval, cfg.LogLevel = "0s", "10ms", "Warn"
	test.That(t, cfg.Validate("path"), test.ShouldBeNil)
	test.That(t, cfg.ConnectionTimeoutDuration(), test.ShouldEqual, time.Duration(0))
	test.That(t, cfg.ReplayIntervalDuration(), test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.WARN)

	cfg = New()
	cfg.LogLevel, cfg.Debug = "error", true
	test.That(t, cfg.Validate("path"), test.ShouldBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
}

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("FEMURTRACK_TEST_CATALOG", "/data/left.csv")

	path := filepath.Join(t.TempDir(), "femurtrack.json")
	contents := `{
		"server_address": "192.168.1.10",
		"femur_id": 4,
		"stylus_id": 7,
		"catalog_path": "${FEMURTRACK_TEST_CATALOG}",
		"connection_timeout": "2s",
		"debug": true
	}`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ServerAddress, test.ShouldEqual, "192.168.1.10")
	test.That(t, cfg.FemurID, test.ShouldEqual, 4)
	test.That(t, cfg.StylusID, test.ShouldEqual, 7)
	test.That(t, cfg.CatalogPath, test.ShouldEqual, "/data/left.csv")
	test.That(t, cfg.ExportDir, test.ShouldEqual, ".")
	test.That(t, cfg.ConnectionTimeoutDuration(), test.ShouldEqual, 2*time.Second)
	test.That(t, cfg.Debug, test.ShouldBeTrue)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = FromReader("inline", strings.NewReader("{"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "inline")

	_, err = FromReader("inline", strings.NewReader(`{"femur_id": 2}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must differ")

	commented := `{
		// bodies as numbered in the capture software
		femur_id: 10,
		stylus_id: 11,
	}`
	cfg, err = FromReader("inline", strings.NewReader(commented), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FemurID, test.ShouldEqual, 10)
	test.That(t, cfg.StylusID, test.ShouldEqual, 11)

	// zero is a real rigid body id, not a request for the default
	cfg, err = FromReader("inline", strings.NewReader(`{"femur_id": 0, "stylus_id": 3}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FemurID, test.ShouldEqual, 0)
	test.That(t, cfg.StylusID, test.ShouldEqual, 3)

	cfg, err = FromReader("inline", strings.NewReader(`{"stylus_id": 0}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FemurID, test.ShouldEqual, DefaultFemurID)
	test.That(t, cfg.StylusID, test.ShouldEqual, 0)
}

func TestSchema(t *testing.T) {
	out, err := SchemaJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, `"femur_id"`)
	test.That(t, string(out), test.ShouldContainSubstring, `"connection_timeout"`)
	test.That(t, string(out), test.ShouldNotContainSubstring, "replayInterval")
	test.That(t, Schema().Definitions["Config"].Required, test.ShouldBeEmpty)
}
