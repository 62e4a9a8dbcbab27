package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Assigner hands out unique names within one archive. The first entry to ask
// for a name gets it; later collisions get "-2", "-3", ... before the
// extension, in the order they are assigned.
type Assigner struct {
	taken   map[string]struct{}
	next    map[string]int
	renamed int
}

// NewAssigner returns an empty Assigner.
func NewAssigner() *Assigner {
	return &Assigner{
		taken: make(map[string]struct{}),
		next:  make(map[string]int),
	}
}

// Assign returns want, or the first free numbered variant of it.
func (a *Assigner) Assign(want string) string {
	if _, exists := a.taken[want]; !exists {
		a.taken[want] = struct{}{}
		return want
	}
	stem, ext := splitExtension(want)
	n := max(a.next[want], 2)
	for {
		candidate := stem + "-" + strconv.Itoa(n) + ext
		n++
		if _, exists := a.taken[candidate]; !exists {
			a.next[want] = n
			a.taken[candidate] = struct{}{}
			a.renamed++
			return candidate
		}
	}
}

// Renamed reports how many names differed from the one requested.
func (a *Assigner) Renamed() int {
	return a.renamed
}

var archiveSuffixPattern = regexp.MustCompile(`^(.+)_\d+$`)

// ArchiveName strips a trailing "_<digits>" download suffix from a .cbz file
// name, so "foobar_1234.cbz" becomes "foobar.cbz". The directory is kept. The
// boolean is false when path is not a .cbz file or carries no such suffix.
func ArchiveName(path string) (string, bool) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".cbz") {
		return path, false
	}
	match := archiveSuffixPattern.FindStringSubmatch(strings.TrimSuffix(base, ext))
	if match == nil {
		return path, false
	}
	return dir + match[1] + ext, true
}

// IsArchive reports whether path has a comic archive extension.
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbz", ".zip":
		return true
	default:
		return false
	}
}
