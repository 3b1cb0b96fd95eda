//go:build windows

package holepunch

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// zeroDataInfo mirrors FILE_ZERO_DATA_INFORMATION. BeyondFinalZero is
// the first byte left untouched, so the zeroed range is half-open.
type zeroDataInfo struct {
	FileOffset      int64
	BeyondFinalZero int64
}

// punchHole zeroes [start, end) with FSCTL_SET_ZERO_DATA. On files
// carrying the sparse attribute the filesystem also releases the
// backing storage; on others it writes zeros.
func punchHole(f *os.File, start, end uint64) error {
	info := zeroDataInfo{
		FileOffset:      int64(start),
		BeyondFinalZero: int64(end),
	}
	var bytesReturned uint32
	err := windows.DeviceIoControl(
		windows.Handle(f.Fd()),
		windows.FSCTL_SET_ZERO_DATA,
		(*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)),
		nil, 0,
		&bytesReturned,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "punching hole [%d,%d)", start, end)
	}
	return nil
}

// setSparse sets the sparse attribute. Without it NTFS keeps zeroed
// ranges allocated.
func setSparse(f *os.File) error {
	var bytesReturned uint32
	err := windows.DeviceIoControl(
		windows.Handle(f.Fd()),
		windows.FSCTL_SET_SPARSE,
		nil, 0,
		nil, 0,
		&bytesReturned,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "setting sparse attribute")
	}
	return nil
}
