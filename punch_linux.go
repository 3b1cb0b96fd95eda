//go:build linux

package holepunch

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// punchHole deallocates [start, end) with fallocate. PUNCH_HOLE must be
// paired with KEEP_SIZE, so the apparent file length never changes even
// when the range reaches past the last byte.
func punchHole(f *os.File, start, end uint64) error {
	mode := unix.FALLOC_FL_PUNCH_HOLE | unix.FALLOC_FL_KEEP_SIZE
	err := unix.Fallocate(int(f.Fd()), uint32(mode), int64(start), int64(end-start))
	if err != nil {
		return errors.Wrapf(err, "punching hole [%d,%d)", start, end)
	}
	return nil
}
