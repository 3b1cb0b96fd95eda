//go:build freebsd

package holepunch

import "os"

// FreeBSD reports holes through SEEK_HOLE/SEEK_DATA but exposes no
// fallocate-style deallocation call, so scanning works and punching does
// not.
func punchHole(f *os.File, start, end uint64) error {
	return ErrUnsupportedPlatform
}
