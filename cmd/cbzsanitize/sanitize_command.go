package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cbzsanitize/internal/config"
	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/sanitize"
)

type sanitizeFlags struct {
	output        string
	outputDir     string
	maxDimension  int
	quality       int
	sizeThreshold string
	keepOriginal  bool
	dryRun        bool
	noProgress    bool
}

func newSanitizeCommand(ctx *commandContext) *cobra.Command {
	var flags sanitizeFlags

	cmd := &cobra.Command{
		Use:   "sanitize <archive>...",
		Short: "Deduplicate, rename, and shrink the pages of comic archives",
		Long: "Rewrite each archive with duplicate pages removed, page names cleaned and\n" +
			"zero-padded, and oversized images scaled down. Archives are replaced in\n" +
			"place through an atomic rename unless --output or --output-dir is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.commandConfig()
			if err != nil {
				return err
			}
			if err := applySanitizeFlags(cmd, cfg, flags); err != nil {
				return err
			}
			requests, err := buildRequests(args, flags)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			logger, err := ctx.logger(cfg, stderr)
			if err != nil {
				return err
			}
			var opts []sanitize.Option
			if !flags.noProgress && !ctx.verbose() && shouldColorize(stderr) {
				opts = append(opts, sanitize.WithProgress(newBarProgress(stderr)))
			}
			pipeline, err := sanitize.New(cfg, logger, opts...)
			if err != nil {
				return err
			}

			reports := pipeline.RunBatch(cmd.Context(), requests)
			out := cmd.OutOrStdout()
			printSanitizeSummary(out, newStatusWriter(out), reports)

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if totals := sanitize.Summarize(reports); totals.Failures > 0 {
				return fmt.Errorf("%d of %d archives failed", totals.Failures, totals.Archives)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the sanitized archive here (single input only)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Write sanitized archives into this directory")
	cmd.Flags().IntVar(&flags.maxDimension, "max-dimension", 0, "Longest image edge in pixels (overrides config)")
	cmd.Flags().IntVar(&flags.quality, "quality", 0, "JPEG quality 1-100 (overrides config)")
	cmd.Flags().StringVar(&flags.sizeThreshold, "size-threshold", "", "Re-encode images larger than this, e.g. \"3 MB\" (overrides config)")
	cmd.Flags().BoolVar(&flags.keepOriginal, "keep-original", false, "Keep the source as <name>-orig.cbz when replacing in place")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Process archives without writing anything")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func applySanitizeFlags(cmd *cobra.Command, cfg *config.Config, flags sanitizeFlags) error {
	changed := cmd.Flags().Changed
	if changed("max-dimension") {
		cfg.Transcode.MaxDimension = flags.maxDimension
	}
	if changed("quality") {
		cfg.Transcode.Quality = flags.quality
	}
	if changed("size-threshold") {
		cfg.Transcode.SizeThreshold = flags.sizeThreshold
	}
	if changed("keep-original") {
		cfg.Output.KeepOriginal = flags.keepOriginal
	}
	if err := cfg.Finalize(); err != nil {
		return faults.Wrap(faults.ErrConfiguration, "cli", "flags", "", err)
	}
	return nil
}

func buildRequests(args []string, flags sanitizeFlags) ([]sanitize.Request, error) {
	output := strings.TrimSpace(flags.output)
	outputDir := strings.TrimSpace(flags.outputDir)
	switch {
	case output != "" && outputDir != "":
		return nil, errors.New("--output and --output-dir are mutually exclusive")
	case output != "" && len(args) != 1:
		return nil, errors.New("--output requires exactly one archive")
	}

	requests := make([]sanitize.Request, 0, len(args))
	destinations := make(map[string]string, len(args))
	for _, arg := range args {
		req := sanitize.Request{Source: arg, DryRun: flags.dryRun}
		switch {
		case output != "":
			req.Destination = output
		case outputDir != "":
			req.Destination = filepath.Join(outputDir, filepath.Base(arg))
		}
		dest := req.Destination
		if dest == "" {
			dest = arg
		}
		key, err := filepath.Abs(dest)
		if err != nil {
			key = filepath.Clean(dest)
		}
		if prev, exists := destinations[key]; exists {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, arg, dest)
		}
		destinations[key] = arg
		requests = append(requests, req)
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %q: %w", outputDir, err)
		}
	}
	return requests, nil
}

func printSanitizeSummary(out io.Writer, status *statusWriter, reports []sanitize.Report) {
	if len(reports) == 0 {
		return
	}
	headers := []string{"Archive", "Pages", "Kept", "Dupes", "Junk", "Resized", "Warn", "Before", "After", "Status"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if r.Failed() {
			rows = append(rows, []string{filepath.Base(r.Source), "-", "-", "-", "-", "-", "-", formatBytes(r.BytesBefore), "-", "failed"})
			continue
		}
		status := "ok"
		if r.DryRun {
			status = "dry run"
		}
		rows = append(rows, []string{
			filepath.Base(r.Source),
			strconv.Itoa(r.Entries),
			strconv.Itoa(r.Kept),
			strconv.Itoa(r.Duplicates),
			strconv.Itoa(r.Junk),
			strconv.Itoa(r.Transcoded),
			strconv.Itoa(r.Warnings),
			formatBytes(r.BytesBefore),
			formatBytes(r.BytesAfter),
			status,
		})
	}

	totals := sanitize.Summarize(reports)
	footer := []string{
		fmt.Sprintf("%d archives", totals.Archives),
		strconv.Itoa(totals.Entries),
		"",
		strconv.Itoa(totals.Duplicates),
		strconv.Itoa(totals.Junk),
		strconv.Itoa(totals.Transcoded),
		strconv.Itoa(totals.Warnings),
		formatBytes(totals.BytesBefore),
		formatBytes(totals.BytesAfter),
		fmt.Sprintf("%d failed", totals.Failures),
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, footer))

	for _, r := range reports {
		if r.Failed() {
			status.print(filepath.Base(r.Source), statusError, failureMessage(r.Err))
		}
	}
	if saved := totals.BytesBefore - totals.BytesAfter; totals.BytesAfter > 0 && saved > 0 {
		status.print("Saved", statusOK, humanize.Bytes(uint64(saved)))
	}
}

func failureMessage(err error) string {
	return fmt.Sprintf("%s: %v", faults.Kind(err), err)
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}
