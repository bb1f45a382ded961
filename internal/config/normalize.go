package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PLOTFILL_DATABASE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Database = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("PLOTFILL_REFERENCE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ReferenceDir = strings.TrimSpace(value)
	}

	var err error
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReferenceDir) == "" {
		c.Paths.ReferenceDir = defaultReferenceDir
	}
	if c.Paths.ReferenceDir, err = expandPath(c.Paths.ReferenceDir); err != nil {
		return fmt.Errorf("paths.reference_dir: %w", err)
	}
	c.Paths.ReferenceGlob = strings.TrimSpace(c.Paths.ReferenceGlob)
	if c.Paths.ReferenceGlob == "" {
		c.Paths.ReferenceGlob = defaultReferenceGlob
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
