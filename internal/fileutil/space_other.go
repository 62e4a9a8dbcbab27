//go:build !linux && !darwin

package fileutil

// AvailableBytes is not implemented on this platform.
func AvailableBytes(string) (uint64, bool, error) {
	return 0, false, nil
}
