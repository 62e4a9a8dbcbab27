package sanitize_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/sanitize"
	"cbzsanitize/internal/testsupport"
)

func TestScanFlagsLargeAndDuplicateEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.cbz")
	testsupport.WriteArchive(t, path,
		testsupport.Member{Name: "p1.jpg", Data: bytes.Repeat([]byte{1}, 2000)},
		testsupport.Member{Name: "p2.jpg", Data: bytes.Repeat([]byte{2}, 5000)},
		testsupport.Member{Name: "p3.jpg", Data: []byte("small")},
		testsupport.Member{Name: "p3.jpg", Data: []byte("small")},
		testsupport.Member{Name: "p4.jpg", Data: bytes.Repeat([]byte{1}, 2000)},
	)

	report, err := sanitize.Scan(context.Background(), path, 1000, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Entries)
	assert.Equal(t, int64(9010), report.Bytes)

	require.Len(t, report.Large, 3)
	assert.Equal(t, sanitize.LargeEntry{Name: "p2.jpg", Size: 5000}, report.Large[0])
	assert.Equal(t, "p1.jpg", report.Large[1].Name)
	assert.Equal(t, "p4.jpg", report.Large[2].Name)

	assert.Equal(t, []string{"p3.jpg"}, report.DuplicateNames)
	require.Len(t, report.DuplicateGroups, 2)
	assert.Equal(t, []string{"p1.jpg", "p4.jpg"}, report.DuplicateGroups[0].Names)
	assert.Equal(t, []string{"p3.jpg", "p3.jpg"}, report.DuplicateGroups[1].Names)
}

func TestScanInvalidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cbz")
	testsupport.WriteFile(t, path, []byte("nope"))

	_, err := sanitize.Scan(context.Background(), path, 1, 1<<20)
	assert.ErrorIs(t, err, faults.ErrCorruptArchive)
}
