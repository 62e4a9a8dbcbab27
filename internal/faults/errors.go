package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCorruptArchive marks a source archive that cannot be opened or listed.
	ErrCorruptArchive = errors.New("corrupt archive")
	// ErrDecodeFailure marks a single entry whose image could not be decoded.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrWrite marks a destination archive that could not be written.
	ErrWrite = errors.New("write error")
	// ErrConfiguration marks an invalid config file or command-line flag.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err aborts the run for the archive it belongs to.
// Decode failures are entry-scoped and never abort a run.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDecodeFailure):
		return false
	default:
		return true
	}
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorruptArchive):
		return "corrupt_archive"
	case errors.Is(err, ErrDecodeFailure):
		return "decode_failure"
	case errors.Is(err, ErrWrite):
		return "write_error"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sanitize failure"
	}
	return strings.Join(parts, ": ")
}
