package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cbzsanitize/internal/config"
	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/logging"
)

type commandContext struct {
	configFlag    *string
	verboseFlag   *bool
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, verboseFlag *bool, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		verboseFlag:   verboseFlag,
		logFormatFlag: logFormatFlag,
	}
}

// ensureConfig loads the configuration once and applies the global logging
// flags on top of it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = faults.Wrap(faults.ErrConfiguration, "cli", "load config", resolved, err)
			return
		}
		if c.verbose() {
			cfg.Logging.Level = "debug"
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = *c.logFormatFlag
		}
		if err := cfg.Finalize(); err != nil {
			c.configErr = faults.Wrap(faults.ErrConfiguration, "cli", "apply flags", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// commandConfig returns a copy of the loaded config that a command may
// modify with its own flags.
func (c *commandContext) commandConfig() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	clone := *cfg
	clone.Naming.StripSuffixes = append([]string(nil), cfg.Naming.StripSuffixes...)
	clone.Archive.DropPatterns = append([]string(nil), cfg.Archive.DropPatterns...)
	return &clone, nil
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

func (c *commandContext) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg, w)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
