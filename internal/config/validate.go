package config

import (
	"errors"
	"fmt"
	"path"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscode() error {
	if err := ensurePositiveMap(map[string]int64{
		"transcode.max_dimension":  int64(c.Transcode.MaxDimension),
		"transcode.size_threshold": c.Transcode.SizeThresholdBytes,
		"transcode.max_pixels":     c.Transcode.MaxPixels,
	}); err != nil {
		return err
	}
	if c.Transcode.Quality < 1 || c.Transcode.Quality > 100 {
		return errors.New("transcode.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.PadWidth < 1 || c.Naming.PadWidth > 9 {
		return errors.New("naming.pad_width must be between 1 and 9")
	}
	return nil
}

func (c *Config) validateArchive() error {
	for _, pattern := range c.Archive.DropPatterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("archive.drop_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	if c.Archive.MaxEntryBytes <= 0 {
		return errors.New("archive.max_entry_size must be positive")
	}
	switch c.Archive.Compression {
	case "deflate", "store":
	default:
		return fmt.Errorf("archive.compression must be deflate or store, got %q", c.Archive.Compression)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
