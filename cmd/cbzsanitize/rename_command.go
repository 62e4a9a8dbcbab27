package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cbzsanitize/internal/fileutil"
	"cbzsanitize/internal/logging"
	"cbzsanitize/internal/naming"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename <archive>...",
		Short: "Strip numeric download suffixes from archive names",
		Long:  "Rename archives such as foobar_1234.cbz to foobar.cbz. Existing files are never overwritten.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.commandConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "rename")

			status := newStatusWriter(cmd.OutOrStdout())
			failed := 0
			for _, path := range args {
				target, ok := naming.ArchiveName(path)
				if !ok {
					reason := "name has no numeric suffix"
					if !naming.IsArchive(path) {
						reason = "not a .cbz file"
					}
					logging.WarnWithContext(logger, "archive not renamed", "rename_skipped",
						logging.String(logging.FieldArchive, path),
						logging.String("reason", reason),
						logging.String(logging.FieldImpact, "file left as is"))
					status.print(path, statusWarn, reason)
					continue
				}
				if dryRun {
					status.print(path, statusInfo, "would rename to "+target)
					continue
				}
				if err := renameArchive(logger, path, target); err != nil {
					failed++
					status.print(path, statusError, err.Error())
					continue
				}
				status.print(path, statusOK, "renamed to "+target)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d archives could not be renamed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the new names without renaming")
	return cmd
}

// renameArchive moves path to target without ever replacing an existing
// file: the new name is created as a link (or exclusive copy) first, and the
// old name is removed only after that succeeds.
func renameArchive(logger *slog.Logger, path, target string) error {
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("destination %s already exists", target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check destination: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := fileutil.LinkOrCopy(path, target); err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if err := os.Remove(path); err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("remove %s: %w", path, err)
	}
	logger.Debug("archive renamed", logging.String(logging.FieldArchive, path), logging.String("target", target))
	return nil
}
