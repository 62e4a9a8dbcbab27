package cbz

import (
	"cmp"
	"crypto/sha256"
	"slices"
	"time"
)

// Entry is one file inside an archive, typically one comic page.
type Entry struct {
	OriginalName  string
	CanonicalName string
	// SortKey is the canonical name before any collision suffix was added.
	SortKey       string
	Payload       []byte
	Modified      time.Time
	ContentHash   [sha256.Size]byte
	IsDuplicate   bool
	WasTranscoded bool
}

// Name returns the canonical name, falling back to the original name before
// normalization has run.
func (e *Entry) Name() string {
	if e.CanonicalName != "" {
		return e.CanonicalName
	}
	return e.OriginalName
}

// Size returns the payload length in bytes.
func (e *Entry) Size() int64 {
	return int64(len(e.Payload))
}

func (e *Entry) sortKey() string {
	if e.SortKey != "" {
		return e.SortKey
	}
	return e.Name()
}

// SortPages orders entries by SortKey, falling back to the canonical name.
// The sort is stable, so entries whose keys compare equal (pages whose names
// collided) keep their listing order, and an archive that is already in
// zero-padded page order is left untouched.
func SortPages(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		return cmp.Compare(a.sortKey(), b.sortKey())
	})
}
