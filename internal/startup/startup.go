package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"picpurge/internal/logging"
	"picpurge/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Config holds the process configuration. Environment variables give
// the defaults; CLI flags override individual fields afterwards.
type Config struct {
	DatabaseDir string
	RecycleDir  string
	Port        string
	Concurrency int

	// Derived paths
	DatabasePath string
}

// LoadConfig reads configuration from the environment, validates the
// directories the run cannot do without, and logs the startup banner.
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	databaseDir := getEnv("PICPURGE_DATABASE_DIR", ".")
	recycleDir := getEnv("PICPURGE_RECYCLE_DIR", "./recycled")
	port := getEnv("PICPURGE_PORT", "8080")
	concurrency := getEnvInt("PICPURGE_WORKERS", 0)

	logging.Info("  PICPURGE_DATABASE_DIR: %s", databaseDir)
	logging.Info("  PICPURGE_RECYCLE_DIR:  %s", recycleDir)
	logging.Info("  PICPURGE_PORT:         %s", port)
	if concurrency > 0 {
		logging.Info("  PICPURGE_WORKERS:      %d", concurrency)
	} else {
		logging.Info("  PICPURGE_WORKERS:      auto (%d)", workers.Default())
	}
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	databaseDir, err := filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving database directory: %w", err)
	}
	recycleDir, err = filepath.Abs(recycleDir)
	if err != nil {
		return nil, fmt.Errorf("resolving recycle directory: %w", err)
	}

	// Both directories are fatal when unusable: the store cannot open
	// without one and the pipeline recycles into the other.
	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}
	if err := ensureDirectory(recycleDir, "recycle"); err != nil {
		return nil, fmt.Errorf("recycle directory: %w", err)
	}
	if err := testWriteAccess(recycleDir); err != nil {
		return nil, fmt.Errorf("recycle directory is not writable: %w", err)
	}

	return &Config{
		DatabaseDir:  databaseDir,
		RecycleDir:   recycleDir,
		Port:         port,
		Concurrency:  concurrency,
		DatabasePath: filepath.Join(databaseDir, "picpurge.db"),
	}, nil
}

// LogFatal logs and exits. Kept here so callers do not import logging
// just for the fatal path.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  _      ____
   / __ \(_)____/ __ \__  ______________ ____
  / /_/ / / ___/ /_/ / / / / ___/ __  / _  /
 / ____/ / /__/ ____/ /_/ / /  / /_/ /  __/
/_/   /_/\___/_/    \__,_/_/   \__  /\___/
                              /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Go:         %s", GoVersion)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}
