package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Backend names a read backend for queries, analytics, and exports.
const (
	BackendDocument = "document"
	BackendSQLite   = "sqlite"
)

type Config struct {
	// HTTP Server
	Port string

	// Stores
	DocumentPath string
	SQLiteDBPath string

	// Read backend selection
	DataBackend string

	// MirrorWrites keeps the relational store in step on every write.
	// Disabled, the mirror only changes when the sync bridge runs.
	MirrorWrites bool

	// Exports
	ExportDir string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		DocumentPath: getEnv("DOCUMENT_STORE_PATH", "./data/expenses.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		DataBackend:  getEnv("DATA_BACKEND", BackendDocument),
		MirrorWrites: getEnvBool("MIRROR_WRITES", true),
		ExportDir:    getEnv("EXPORT_DIR", "./exports"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendDocument, BackendSQLite:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]",
			c.DataBackend, BackendDocument, BackendSQLite))
	}

	if c.DocumentPath == "" {
		errors = append(errors, "document store path cannot be empty")
	} else if err := ensureDir(c.DocumentPath); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create document store directory: %v", err))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if err := ensureDir(c.SQLiteDBPath); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
