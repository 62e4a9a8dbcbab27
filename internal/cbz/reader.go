package cbz

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"cbzsanitize/internal/faults"
)

const defaultMaxEntryBytes int64 = 512 << 20

// Reader lists the entries of one archive on disk.
type Reader struct {
	path          string
	maxEntryBytes int64
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithMaxEntryBytes rejects entries whose uncompressed size exceeds limit.
func WithMaxEntryBytes(limit int64) ReaderOption {
	return func(r *Reader) {
		if limit > 0 {
			r.maxEntryBytes = limit
		}
	}
}

// Open verifies that path is a readable archive and returns a Reader for it.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{path: path, maxEntryBytes: defaultMaxEntryBytes}
	for _, opt := range opts {
		opt(r)
	}
	zr, err := r.openZip()
	if err != nil {
		return nil, err
	}
	_ = zr.Close()
	return r, nil
}

// Path returns the archive path.
func (r *Reader) Path() string {
	return r.path
}

// Entries yields every file entry in stored order with its payload loaded.
// Directory records are skipped. On the first failure the sequence yields a
// nil entry with an ErrCorruptArchive error and stops.
func (r *Reader) Entries() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		zr, err := r.openZip()
		if err != nil {
			yield(nil, err)
			return
		}
		defer zr.Close()

		for _, file := range zr.File {
			if isDirectory(file) {
				continue
			}
			entry, err := r.readEntry(file)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// Count returns the number of file entries without reading any payload.
func (r *Reader) Count() (int, error) {
	zr, err := r.openZip()
	if err != nil {
		return 0, err
	}
	defer zr.Close()
	n := 0
	for _, file := range zr.File {
		if !isDirectory(file) {
			n++
		}
	}
	return n, nil
}

// Collect drains Entries into a slice.
func (r *Reader) Collect() ([]*Entry, error) {
	var entries []*Entry
	for entry, err := range r.Entries() {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Reader) openZip() (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(r.path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "lister", "open", r.path, err)
	}
	return zr, nil
}

func (r *Reader) readEntry(file *zip.File) (*Entry, error) {
	if file.UncompressedSize64 > uint64(r.maxEntryBytes) {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "lister", "read",
			fmt.Sprintf("%s: entry %q is %d bytes, limit %d", r.path, file.Name, file.UncompressedSize64, r.maxEntryBytes), nil)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "lister", "read", fmt.Sprintf("%s: entry %q", r.path, file.Name), err)
	}
	defer rc.Close()

	// The declared size can lie; never read more than the limit allows.
	payload, err := io.ReadAll(io.LimitReader(rc, r.maxEntryBytes+1))
	if err != nil {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "lister", "read", fmt.Sprintf("%s: entry %q", r.path, file.Name), err)
	}
	if int64(len(payload)) > r.maxEntryBytes {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "lister", "read",
			fmt.Sprintf("%s: entry %q exceeds %d bytes", r.path, file.Name, r.maxEntryBytes), nil)
	}

	return &Entry{
		OriginalName: file.Name,
		Payload:      payload,
		Modified:     file.Modified,
	}, nil
}

func isDirectory(file *zip.File) bool {
	return strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir()
}
