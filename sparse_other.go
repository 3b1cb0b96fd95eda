//go:build !linux && !darwin && !freebsd && !windows

package holepunch

import "os"

// Fallback for platforms with no sparse-file backend: every operation is
// present but refuses at the error level.

func scanChunks(f *os.File) (Segments, error) {
	return nil, ErrUnsupportedPlatform
}

func punchHole(f *os.File, start, end uint64) error {
	return ErrUnsupportedPlatform
}

func isSparse(f *os.File) (bool, error) {
	return false, ErrUnsupportedPlatform
}
