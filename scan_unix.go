//go:build linux || darwin || freebsd

package holepunch

import (
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// scanChunks reconstructs the segment list by alternating SEEK_HOLE and
// SEEK_DATA seeks. Each seek returns the offset of the next transition
// into the requested region type; ENXIO means no such transition exists
// before end of file, which terminates the walk rather than failing it.
func scanChunks(f *os.File) (Segments, error) {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seeking to end of file")
	}
	if end == 0 {
		return Segments{}, nil
	}
	fd := int(f.Fd())

	// The offset of the first hole decides the starting type. Filesystems
	// report an implicit hole at end of file, so a file with no real
	// holes yields firstHole == end here.
	typ := Data
	firstHole, found, err := seekTransition(fd, 0, unix.SEEK_HOLE)
	if err != nil {
		return nil, err
	}
	if found && firstHole == 0 {
		typ = Hole
	}

	var segs Segments
	pos := int64(0)
	for pos < end {
		whence := unix.SEEK_HOLE
		if typ == Hole {
			whence = unix.SEEK_DATA
		}
		next, found, err := seekTransition(fd, pos, whence)
		if err != nil {
			return nil, err
		}
		if !found || next > end {
			// The rest of the file, up to end, is uniformly typ.
			next = end
		}
		if next <= pos {
			// A concurrent writer moved a transition behind the cursor;
			// bail out instead of looping forever.
			return nil, errors.Errorf("file changed during scan at offset %d", pos)
		}
		segs = append(segs, Segment{Type: typ, Start: uint64(pos), End: uint64(next)})
		pos = next
		typ = typ.Opposite()
	}
	return segs, nil
}

// seekTransition seeks for the next hole or data region at or after off.
// found is false when the file has no further transition of the
// requested kind before end of file.
func seekTransition(fd int, off int64, whence int) (next int64, found bool, err error) {
	next, err = unix.Seek(fd, off, whence)
	if err != nil {
		eof, cerr := classifySeekError(err)
		if eof {
			return 0, false, nil
		}
		return 0, false, cerr
	}
	if next < 0 {
		// lseek reported neither an offset nor an errno.
		return 0, false, &RawError{Code: int(next)}
	}
	return next, true, nil
}

// classifySeekError maps the failure of a SEEK_HOLE/SEEK_DATA seek.
// ENXIO means no further transition exists before end of file and is not
// an error. ENOTSUP means the filesystem cannot report holes; kernels
// and filesystems without the SEEK_HOLE extension answer EINVAL instead,
// which lands in the same bucket.
func classifySeekError(err error) (eof bool, _ error) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == unix.ENXIO {
			return true, nil
		}
		if errno == unix.ENOTSUP || errno == unix.EOPNOTSUPP || errno == unix.EINVAL {
			return false, ErrUnsupportedFileSystem
		}
	}
	return false, errors.Wrap(err, "seeking for hole/data transition")
}

// isSparse compares allocated blocks against the apparent size, the
// stat-level view of sparseness. st_blocks is always in 512-byte units
// regardless of the filesystem block size.
func isSparse(f *os.File) (bool, error) {
	fi, err := f.Stat()
	if err != nil {
		return false, errors.Wrap(err, "stat")
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return false, nil
	}
	return st.Blocks*512 < st.Size, nil
}
