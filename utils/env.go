package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kneelab/femurtrack/logging"
)

// ConnectionTimeoutEnvVar overrides the configured connection timeout when set.
const ConnectionTimeoutEnvVar = "FEMURTRACK_CONNECTION_TIMEOUT"

// GetConnectionTimeout returns the connection timeout from the environment if set, configured
// otherwise.
func GetConnectionTimeout(configured time.Duration, logger logging.Logger) time.Duration {
	return timeoutHelper(configured, ConnectionTimeoutEnvVar, logger)
}

func timeoutHelper(defaultTimeout time.Duration, timeoutEnvVar string, logger logging.Logger) time.Duration {
	if timeoutVal := os.Getenv(timeoutEnvVar); timeoutVal != "" {
		timeout, err := time.ParseDuration(timeoutVal)
		if err != nil || timeout < 0 {
			logger.Warnf("Failed to parse %s env var, falling back to %v timeout", timeoutEnvVar, defaultTimeout)
			return defaultTimeout
		}
		return timeout
	}
	return defaultTimeout
}

// PlatformHomeDir wraps Getenv("HOME"), falling back to os.UserHomeDir on windows.
func PlatformHomeDir() string {
	if runtime.GOOS == "windows" {
		homedir, _ := os.UserHomeDir() //nolint:errcheck
		if homedir != "" {
			return homedir
		}
	}
	return os.Getenv("HOME")
}

// ExpandHomeDir replaces a leading ~ in path with the home directory.
func ExpandHomeDir(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path
	}
	home := PlatformHomeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
