package utils

import (
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/kneelab/femurtrack/logging"
)

func TestGetConnectionTimeout(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	test.That(t, GetConnectionTimeout(15*time.Second, logger), test.ShouldEqual, 15*time.Second)

	t.Setenv(ConnectionTimeoutEnvVar, "3s")
	test.That(t, GetConnectionTimeout(15*time.Second, logger), test.ShouldEqual, 3*time.Second)

	t.Setenv(ConnectionTimeoutEnvVar, "later")
	test.That(t, GetConnectionTimeout(15*time.Second, logger), test.ShouldEqual, 15*time.Second)
	test.That(t, logs.FilterMessageSnippet(ConnectionTimeoutEnvVar).Len(), test.ShouldEqual, 1)
}

func TestExpandHomeDir(t *testing.T) {
	t.Setenv("HOME", "/home/tracker")
	test.That(t, ExpandHomeDir("points.csv"), test.ShouldEqual, "points.csv")
	test.That(t, ExpandHomeDir("/data/points.csv"), test.ShouldEqual, "/data/points.csv")
	test.That(t, ExpandHomeDir("~"), test.ShouldEqual, "/home/tracker")
	test.That(t, ExpandHomeDir(filepath.Join("~", "cal", "points.csv")), test.ShouldEqual, "/home/tracker/cal/points.csv")
	test.That(t, ExpandHomeDir("~other/points.csv"), test.ShouldEqual, "~other/points.csv")
}
