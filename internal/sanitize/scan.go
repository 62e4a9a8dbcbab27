package sanitize

import (
	"context"
	"slices"

	"cbzsanitize/internal/cbz"
	"cbzsanitize/internal/dedupe"
)

// LargeEntry is an entry above the scan threshold.
type LargeEntry struct {
	Name string
	Size int64
}

// ScanReport describes one archive without modifying it.
type ScanReport struct {
	Path    string
	Entries int
	Bytes   int64
	// Large lists entries above the threshold, largest first.
	Large []LargeEntry
	// DuplicateNames lists stored names that occur more than once.
	DuplicateNames []string
	// DuplicateGroups lists sets of byte-identical entries.
	DuplicateGroups []dedupe.Group
}

// Scan inspects the archive at path, flagging entries larger than threshold
// bytes and repeated names or payloads.
func Scan(ctx context.Context, path string, threshold, maxEntryBytes int64) (ScanReport, error) {
	report := ScanReport{Path: path}
	reader, err := cbz.Open(path, cbz.WithMaxEntryBytes(maxEntryBytes))
	if err != nil {
		return report, err
	}

	detector := dedupe.NewDetector()
	nameCounts := make(map[string]int)
	for entry, err := range reader.Entries() {
		if err != nil {
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Entries++
		report.Bytes += entry.Size()
		if entry.Size() > threshold {
			report.Large = append(report.Large, LargeEntry{Name: entry.OriginalName, Size: entry.Size()})
		}
		nameCounts[entry.OriginalName]++
		if nameCounts[entry.OriginalName] == 2 {
			report.DuplicateNames = append(report.DuplicateNames, entry.OriginalName)
		}
		detector.Observe(entry.OriginalName, entry.Payload)
	}

	slices.SortStableFunc(report.Large, func(a, b LargeEntry) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		default:
			return 0
		}
	})
	report.DuplicateGroups = detector.Groups()
	return report, nil
}
