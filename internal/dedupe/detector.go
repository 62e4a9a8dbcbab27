// Package dedupe flags byte-identical repeats among the entries of one
// archive. Only exact matches count; similar looking pages are kept.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 content fingerprint.
type Digest = [sha256.Size]byte

// Result describes one observed payload.
type Result struct {
	Hash        Digest
	IsDuplicate bool
	// FirstSeen is the name under which the content was first observed.
	FirstSeen string
}

// Detector remembers the payloads seen in one archive. It is not safe for
// concurrent use and must not be shared across archives.
type Detector struct {
	seen   map[Digest]string
	groups map[Digest][]string
	order  []Digest
}

// NewDetector returns a Detector with an empty seen set.
func NewDetector() *Detector {
	return &Detector{
		seen:   make(map[Digest]string),
		groups: make(map[Digest][]string),
	}
}

// Observe hashes payload and reports whether an earlier entry carried the
// same bytes. The first occurrence is recorded under name and is never
// flagged.
func (d *Detector) Observe(name string, payload []byte) Result {
	sum := sha256.Sum256(payload)
	if first, ok := d.seen[sum]; ok {
		d.groups[sum] = append(d.groups[sum], name)
		return Result{Hash: sum, IsDuplicate: true, FirstSeen: first}
	}
	d.seen[sum] = name
	d.groups[sum] = []string{name}
	d.order = append(d.order, sum)
	return Result{Hash: sum, FirstSeen: name}
}

// Group is a set of entries sharing one payload, first occurrence first.
type Group struct {
	Hash  string
	Names []string
}

// Groups returns every payload observed more than once, in the order the
// first copy was seen.
func (d *Detector) Groups() []Group {
	var out []Group
	for _, sum := range d.order {
		names := d.groups[sum]
		if len(names) < 2 {
			continue
		}
		out = append(out, Group{Hash: hex.EncodeToString(sum[:]), Names: append([]string(nil), names...)})
	}
	return out
}
