package server

import (
	"os"

	"github.com/ironsheep/horizon-tools-mcp/internal/detection"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel    = "HORIZON_MCP_LOG_LEVEL"
	EnvDetector    = "HORIZON_MCP_DETECTOR"
	EnvSnapshotDir = "HORIZON_MCP_SNAPSHOT_DIR"
)

// Config holds the server settings.
type Config struct {
	// Version is reported in the initialize handshake.
	Version string

	// Debug enables request and pipeline transition logging.
	Debug bool

	// Detector names the segment detector used when a tool call names none.
	Detector string

	// SnapshotDir is where horizon_snapshot writes when no directory is
	// given. Empty means the OS temp directory.
	SnapshotDir string
}

// ConfigFromEnv builds a Config from the HORIZON_MCP_* environment variables.
func ConfigFromEnv(version string) Config {
	return Config{
		Version:     version,
		Debug:       os.Getenv(EnvLogLevel) == "debug",
		Detector:    os.Getenv(EnvDetector),
		SnapshotDir: os.Getenv(EnvSnapshotDir),
	}
}

func (c Config) version() string {
	if c.Version == "" {
		return "dev"
	}
	return c.Version
}

func (c Config) detector() string {
	if c.Detector == "" {
		return detection.DefaultDetector
	}
	return c.Detector
}

func (c Config) snapshotDir() string {
	if c.SnapshotDir == "" {
		return os.TempDir()
	}
	return c.SnapshotDir
}
