package sanitize

import "time"

// Report summarizes one archive run.
type Report struct {
	RunID       string
	Source      string
	Destination string
	Backup      string
	DryRun      bool

	Entries    int
	Kept       int
	Duplicates int
	Junk       int
	Transcoded int
	Renamed    int
	// Collisions counts canonical names that had to be numbered apart.
	Collisions int
	Warnings   int

	BytesBefore int64
	BytesAfter  int64
	Elapsed     time.Duration

	// Err is the fatal error that aborted the run, if any.
	Err error
}

// Failed reports whether the run was aborted.
func (r Report) Failed() bool {
	return r.Err != nil
}

// Saved returns the number of bytes the run removed, which is negative when
// the archive grew.
func (r Report) Saved() int64 {
	if r.Failed() || r.BytesAfter == 0 {
		return 0
	}
	return r.BytesBefore - r.BytesAfter
}

// Totals adds up a batch of reports. Failed runs only contribute to Failures.
type Totals struct {
	Archives    int
	Failures    int
	Entries     int
	Duplicates  int
	Junk        int
	Transcoded  int
	Warnings    int
	BytesBefore int64
	BytesAfter  int64
}

// Summarize totals a batch of reports.
func Summarize(reports []Report) Totals {
	var t Totals
	for _, r := range reports {
		t.Archives++
		if r.Failed() {
			t.Failures++
			continue
		}
		t.Entries += r.Entries
		t.Duplicates += r.Duplicates
		t.Junk += r.Junk
		t.Transcoded += r.Transcoded
		t.Warnings += r.Warnings
		t.BytesBefore += r.BytesBefore
		t.BytesAfter += r.BytesAfter
	}
	return t
}
