package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

func (c *Config) normalize() error {
	if err := c.normalizeTranscode(); err != nil {
		return err
	}
	c.normalizeNaming()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTranscode() error {
	c.Transcode.SizeThreshold = strings.TrimSpace(c.Transcode.SizeThreshold)
	if c.Transcode.SizeThreshold == "" {
		c.Transcode.SizeThreshold = defaultSizeThreshold
	}
	size, err := parseSize(c.Transcode.SizeThreshold)
	if err != nil {
		return fmt.Errorf("transcode.size_threshold: %w", err)
	}
	c.Transcode.SizeThresholdBytes = size
	if c.Transcode.MaxPixels <= 0 {
		c.Transcode.MaxPixels = defaultMaxPixels
	}
	return nil
}

func (c *Config) normalizeNaming() {
	if c.Naming.PadWidth == 0 {
		c.Naming.PadWidth = defaultPadWidth
	}
	suffixes := make([]string, 0, len(c.Naming.StripSuffixes))
	seen := make(map[string]struct{}, len(c.Naming.StripSuffixes))
	for _, suffix := range c.Naming.StripSuffixes {
		trimmed := strings.TrimSpace(suffix)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		suffixes = append(suffixes, trimmed)
	}
	c.Naming.StripSuffixes = suffixes
}

func (c *Config) normalizeArchive() error {
	patterns := make([]string, 0, len(c.Archive.DropPatterns))
	for _, pattern := range c.Archive.DropPatterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Archive.DropPatterns = patterns

	c.Archive.MaxEntrySize = strings.TrimSpace(c.Archive.MaxEntrySize)
	if c.Archive.MaxEntrySize == "" {
		c.Archive.MaxEntrySize = defaultMaxEntrySize
	}
	size, err := parseSize(c.Archive.MaxEntrySize)
	if err != nil {
		return fmt.Errorf("archive.max_entry_size: %w", err)
	}
	c.Archive.MaxEntryBytes = size

	c.Archive.Compression = strings.ToLower(strings.TrimSpace(c.Archive.Compression))
	if c.Archive.Compression == "" {
		c.Archive.Compression = defaultCompression
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.BackupSuffix = strings.TrimSpace(c.Output.BackupSuffix)
	if c.Output.BackupSuffix == "" {
		c.Output.BackupSuffix = defaultBackupSuffix
	}
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
	if value, ok := os.LookupEnv("CBZSANITIZE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func parseSize(value string) (int64, error) {
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", value, err)
	}
	if size > 1<<62 {
		return 0, fmt.Errorf("size %q is too large", value)
	}
	return int64(size), nil
}
