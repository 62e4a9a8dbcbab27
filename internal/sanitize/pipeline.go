package sanitize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cbzsanitize/internal/cbz"
	"cbzsanitize/internal/config"
	"cbzsanitize/internal/dedupe"
	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/logging"
	"cbzsanitize/internal/naming"
	"cbzsanitize/internal/transcode"
)

// Progress receives per-entry updates while an archive is processed.
type Progress interface {
	Start(archive string, entries int)
	Advance(entry string)
	Finish()
}

// Request names one archive to sanitize. An empty Destination rewrites the
// source in place.
type Request struct {
	Source      string
	Destination string
	DryRun      bool
}

// Pipeline sanitizes archives with one fixed configuration.
type Pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	normalizer  *naming.Normalizer
	transcoder  *transcode.Transcoder
	compression cbz.Compression
	progress    Progress
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithProgress reports per-entry progress to p.
func WithProgress(p Progress) Option {
	return func(pl *Pipeline) {
		pl.progress = p
	}
}

// New builds a Pipeline from a finalized config.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "pipeline", "init", "config is required", nil)
	}
	compression, err := cbz.ParseCompression(cfg.Archive.Compression)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "pipeline", "init", "archive.compression", err)
	}
	p := &Pipeline{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "sanitize"),
		normalizer:  naming.NewNormalizer(cfg.Naming),
		transcoder:  transcode.New(transcode.OptionsFromConfig(cfg.Transcode)),
		compression: compression,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run sanitizes one archive. A fatal error aborts the run and is returned
// alongside a report describing how far it got; entry-level problems are
// logged and counted as warnings.
func (p *Pipeline) Run(ctx context.Context, req Request) (report Report, err error) {
	started := time.Now()
	report = Report{
		RunID:       logging.NewRunID(),
		Source:      req.Source,
		Destination: req.Destination,
		DryRun:      req.DryRun,
	}
	if report.Destination == "" {
		report.Destination = req.Source
	}
	inPlace := sameFile(report.Source, report.Destination)
	if inPlace && p.cfg.Output.KeepOriginal {
		report.Backup = BackupPath(req.Source, p.cfg.Output.BackupSuffix)
	}

	ctx = logging.WithArchive(logging.WithRunID(ctx, report.RunID), req.Source)
	logger := logging.WithContext(ctx, p.logger)
	defer func() {
		report.Elapsed = time.Since(started)
		report.Err = err
		if err != nil {
			logging.ErrorWithContext(logger, "sanitize failed", faults.Kind(err),
				logging.String(logging.FieldErrorHint, errorHint(err)),
				logging.Error(err))
		}
	}()

	reader, err := cbz.Open(req.Source, cbz.WithMaxEntryBytes(p.cfg.Archive.MaxEntryBytes))
	if err != nil {
		return report, err
	}
	if info, statErr := os.Stat(req.Source); statErr == nil {
		report.BytesBefore = info.Size()
	}

	logger.Info("sanitize started",
		logging.String(logging.FieldEventType, "sanitize_start"),
		logging.String("destination", report.Destination),
		logging.Bool("dry_run", req.DryRun))

	entries, err := p.process(ctx, logger, reader, &report)
	if err != nil {
		return report, err
	}

	cbz.SortPages(entries)

	if req.DryRun {
		for _, entry := range entries {
			if !entry.IsDuplicate {
				report.BytesAfter += entry.Size()
			}
		}
		logger.Info("dry run complete, nothing written",
			logging.String(logging.FieldEventType, "sanitize_dry_run"),
			logging.Int("kept", report.Kept))
		return report, nil
	}

	err = cbz.WriteFile(report.Destination, entries, cbz.WriteOptions{
		Compression: p.compression,
		Backup:      report.Backup,
	})
	if err != nil {
		return report, err
	}
	if info, statErr := os.Stat(report.Destination); statErr == nil {
		report.BytesAfter = info.Size()
	}

	logger.Info("sanitize completed",
		logging.String(logging.FieldEventType, "sanitize_complete"),
		logging.Int("entries", report.Entries),
		logging.Int("kept", report.Kept),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("junk", report.Junk),
		logging.Int("transcoded", report.Transcoded),
		logging.Int("warnings", report.Warnings),
		logging.Int64("bytes_before", report.BytesBefore),
		logging.Int64("bytes_after", report.BytesAfter))
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, reader *cbz.Reader, report *Report) ([]*cbz.Entry, error) {
	if p.progress != nil {
		total, err := reader.Count()
		if err != nil {
			return nil, err
		}
		p.progress.Start(reader.Path(), total)
		defer p.progress.Finish()
	}

	detector := dedupe.NewDetector()
	assigner := naming.NewAssigner()
	var entries []*cbz.Entry

	for entry, err := range reader.Entries() {
		if err != nil {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		report.Entries++
		p.handleEntry(logger, entry, detector, assigner, report)
		if entry.CanonicalName != "" {
			entries = append(entries, entry)
		}
		if p.progress != nil {
			p.progress.Advance(entry.OriginalName)
		}
	}
	report.Collisions = assigner.Renamed()
	return entries, nil
}

// handleEntry fills in the canonical name, duplicate flag and final payload
// of one entry. Junk entries are left without a canonical name.
func (p *Pipeline) handleEntry(logger *slog.Logger, entry *cbz.Entry, detector *dedupe.Detector, assigner *naming.Assigner, report *Report) {
	entryLogger := logger.With(logging.String(logging.FieldEntry, entry.OriginalName))

	if pattern, junk := p.junkPattern(entry.OriginalName); junk {
		report.Junk++
		entryLogger.Debug("junk entry dropped", logging.String("pattern", pattern))
		return
	}

	canonical := p.normalizer.Canonical(entry.OriginalName)

	seen := detector.Observe(canonical, entry.Payload)
	entry.ContentHash = seen.Hash
	if seen.IsDuplicate {
		entry.IsDuplicate = true
		entry.CanonicalName = canonical
		report.Duplicates++
		entryLogger.Info("duplicate entry dropped",
			logging.String(logging.FieldEventType, "duplicate_dropped"),
			logging.String("first_seen", seen.FirstSeen))
		return
	}

	result, err := p.transcoder.Apply(canonical, entry.Payload)
	switch {
	case err != nil:
		report.Warnings++
		logging.WarnWithContext(entryLogger, "image left unmodified", faults.Kind(err),
			logging.String(logging.FieldErrorHint, "verify the page opens in an image viewer"),
			logging.String(logging.FieldImpact, "page kept at its original size"),
			logging.Error(err))
	case result.Transcoded:
		entry.Payload = result.Payload
		entry.WasTranscoded = true
		canonical = result.Name
		report.Transcoded++
		entryLogger.Debug("image transcoded",
			logging.Bool("resized", result.Resized),
			logging.Int("width", result.Width),
			logging.Int("height", result.Height),
			logging.Int64("bytes", entry.Size()))
	default:
		if result.Skip != "" && result.Format != transcode.FormatUnknown {
			entryLogger.Debug("image kept", logging.String("reason", result.Skip))
		}
	}

	entry.SortKey = canonical
	entry.CanonicalName = assigner.Assign(canonical)
	if entry.CanonicalName != entry.OriginalName {
		report.Renamed++
	}
	report.Kept++
}

// junkPattern returns the drop pattern matching name or any of its parent
// directories.
func (p *Pipeline) junkPattern(name string) (string, bool) {
	cleaned := strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	for _, pattern := range p.cfg.Archive.DropPatterns {
		for candidate := cleaned; candidate != "." && candidate != ""; candidate = path.Dir(candidate) {
			if ok, _ := path.Match(pattern, candidate); ok {
				return pattern, true
			}
		}
	}
	return "", false
}

// BackupPath returns where the original archive is kept, e.g.
// "book.cbz" becomes "book-orig.cbz".
func BackupPath(source, suffix string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + suffix + ext
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, faults.ErrCorruptArchive):
		return "re-download the archive or check it with `zip -T`"
	case errors.Is(err, faults.ErrWrite):
		return "check permissions and free space on the destination"
	case errors.Is(err, context.Canceled):
		return "run was interrupted; the source is untouched"
	default:
		return fmt.Sprintf("see error (%s)", faults.Kind(err))
	}
}
