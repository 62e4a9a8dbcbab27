package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cbzsanitize/internal/logging"
	"cbzsanitize/internal/sanitize"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var threshold string

	cmd := &cobra.Command{
		Use:   "scan <archive>...",
		Short: "Report large entries and duplicates without changing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.commandConfig()
			if err != nil {
				return err
			}
			limit := cfg.Transcode.SizeThresholdBytes
			if strings.TrimSpace(threshold) != "" {
				parsed, err := humanize.ParseBytes(threshold)
				if err != nil {
					return fmt.Errorf("parse --threshold: %w", err)
				}
				limit = int64(parsed)
			}

			logger, err := ctx.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "scan")

			out := cmd.OutOrStdout()
			status := newStatusWriter(out)
			var reports []sanitize.ScanReport
			for _, path := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				report, err := sanitize.Scan(cmd.Context(), path, limit, cfg.Archive.MaxEntryBytes)
				if err != nil {
					logging.WarnWithContext(logger, "not a valid archive", "scan_invalid",
						logging.String(logging.FieldArchive, path),
						logging.String(logging.FieldErrorHint, "re-download the archive"),
						logging.String(logging.FieldImpact, "archive skipped"),
						logging.Error(err))
					status.print(filepath.Base(path), statusWarn, "not a valid archive")
					continue
				}
				reports = append(reports, report)
			}
			printScanReports(out, status, reports, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&threshold, "threshold", "", "Flag entries larger than this, e.g. \"1.5 MB\" (default: transcode.size_threshold)")
	return cmd
}

func printScanReports(out io.Writer, status *statusWriter, reports []sanitize.ScanReport, limit int64) {
	if len(reports) == 0 {
		return
	}
	headers := []string{"Archive", "Entries", "Size", "Large", "Same name", "Same bytes"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		dupes := 0
		for _, g := range r.DuplicateGroups {
			dupes += len(g.Names) - 1
		}
		rows = append(rows, []string{
			filepath.Base(r.Path),
			strconv.Itoa(r.Entries),
			humanize.Bytes(uint64(r.Bytes)),
			strconv.Itoa(len(r.Large)),
			strconv.Itoa(len(r.DuplicateNames)),
			strconv.Itoa(dupes),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, nil))

	for _, r := range reports {
		label := filepath.Base(r.Path)
		if len(r.Large) > 0 {
			sizes := make([]string, 0, len(r.Large))
			for _, e := range r.Large {
				sizes = append(sizes, fmt.Sprintf("%.1f MB", float64(e.Size)/1e6))
			}
			msg := fmt.Sprintf("%d above %s: %s", len(r.Large), humanize.Bytes(uint64(limit)), strings.Join(sizes, ", "))
			status.print(label, statusWarn, msg)
		}
		if len(r.DuplicateNames) > 0 {
			status.print(label, statusWarn, "duplicate names: "+strings.Join(r.DuplicateNames, ", "))
		}
		for _, g := range r.DuplicateGroups {
			status.print(label, statusInfo, "identical: "+strings.Join(g.Names, ", "))
		}
	}
}
