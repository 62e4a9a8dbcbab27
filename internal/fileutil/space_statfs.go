//go:build linux || darwin

package fileutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AvailableBytes reports the bytes available to unprivileged users on the
// filesystem holding dir.
func AvailableBytes(dir string) (uint64, bool, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, false, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), true, nil
}
