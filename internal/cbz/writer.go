package cbz

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/fileutil"
)

// Compression selects the ZIP method used for written entries.
type Compression int

const (
	Deflate Compression = iota
	Store
)

// ParseCompression maps a config value to a Compression.
func ParseCompression(value string) (Compression, error) {
	switch value {
	case "", "deflate":
		return Deflate, nil
	case "store":
		return Store, nil
	default:
		return Deflate, fmt.Errorf("unsupported compression %q", value)
	}
}

// WriteOptions controls WriteFile.
type WriteOptions struct {
	Compression Compression
	// Backup, when set and the destination already exists, receives the
	// previous destination content before the new archive replaces it.
	Backup string
	// Mode is applied to the written archive; zero means 0o644.
	Mode fs.FileMode
}

// WriteFile writes entries to path in the given order, skipping duplicates.
// Nothing is left behind on failure: the archive is assembled in a temp file
// in the destination directory and renamed over path once complete.
func WriteFile(path string, entries []*Entry, opts WriteOptions) (err error) {
	dir := filepath.Dir(path)
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		if statErr == nil {
			statErr = errors.New("not a directory")
		}
		return faults.Wrap(faults.ErrWrite, "writer", "destination", dir, statErr)
	}

	survivors, need, err := survivingEntries(entries)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "lock", path, err)
	}
	if !locked {
		return faults.Wrap(faults.ErrWrite, "writer", "lock", path+" is being written by another process", nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if opts.Backup != "" {
		if _, statErr := os.Lstat(opts.Backup); statErr == nil {
			return faults.Wrap(faults.ErrWrite, "writer", "backup", opts.Backup+" already exists", nil)
		}
	}

	if err := fileutil.EnsureSpace(dir, need); err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "preflight", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "create temp", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = writeArchive(tmp, survivors, opts.Compression); err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "write", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "sync", path, err)
	}
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err = tmp.Chmod(mode); err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "chmod", path, err)
	}
	if err = tmp.Close(); err != nil {
		return faults.Wrap(faults.ErrWrite, "writer", "close", path, err)
	}

	backedUp := false
	if opts.Backup != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err = fileutil.LinkOrCopy(path, opts.Backup); err != nil {
				return faults.Wrap(faults.ErrWrite, "writer", "backup", opts.Backup, err)
			}
			backedUp = true
		}
	}

	if err = os.Rename(tmpName, path); err != nil {
		if backedUp {
			_ = os.Remove(opts.Backup)
		}
		return faults.Wrap(faults.ErrWrite, "writer", "rename", path, err)
	}
	return nil
}

func survivingEntries(entries []*Entry) ([]*Entry, int64, error) {
	survivors := make([]*Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	var total int64
	for _, entry := range entries {
		if entry == nil || entry.IsDuplicate {
			continue
		}
		name := entry.Name()
		if name == "" {
			return nil, 0, faults.Wrap(faults.ErrWrite, "writer", "validate", "entry without a name", nil)
		}
		if _, exists := seen[name]; exists {
			return nil, 0, faults.Wrap(faults.ErrWrite, "writer", "validate", fmt.Sprintf("entry name %q is not unique", name), nil)
		}
		seen[name] = struct{}{}
		survivors = append(survivors, entry)
		total += entry.Size()
	}
	return survivors, total, nil
}

func writeArchive(file *os.File, entries []*Entry, compression Compression) error {
	buffered := bufio.NewWriterSize(file, 1<<20)
	zw := zip.NewWriter(buffered)

	method := zip.Deflate
	if compression == Store {
		method = zip.Store
	}

	for _, entry := range entries {
		modified := entry.Modified
		if modified.IsZero() {
			modified = time.Now()
		}
		header := &zip.FileHeader{
			Name:     entry.Name(),
			Method:   method,
			Modified: modified,
		}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("add %s: %w", entry.Name(), err)
		}
		if _, err := w.Write(entry.Payload); err != nil {
			return fmt.Errorf("write %s: %w", entry.Name(), err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return buffered.Flush()
}
