//go:build darwin

package holepunch

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// F_PUNCHHOLE deallocates a range of the file. From sys/fcntl.h; x/sys
// carries no helper for it, so the fcntl is issued as a raw syscall.
const fPunchhole = 99

// punchholeArg mirrors fpunchhole_t: the reserved word keeps fp_offset
// 8-byte aligned.
type punchholeArg struct {
	flags    uint32
	reserved uint32
	offset   int64
	length   int64
}

// punchHole deallocates [start, end) via fcntl(F_PUNCHHOLE). APFS wants
// the range block aligned; a misaligned range comes back as EINVAL.
func punchHole(f *os.File, start, end uint64) error {
	arg := punchholeArg{
		offset: int64(start),
		length: int64(end - start),
	}
	// The unsafe.Pointer conversion inside the Syscall argument list pins
	// arg for the duration of the call.
	_, _, errno := unix.Syscall(unix.SYS_FCNTL, f.Fd(), uintptr(fPunchhole), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return errors.Wrapf(errno, "punching hole [%d,%d)", start, end)
	}
	return nil
}
