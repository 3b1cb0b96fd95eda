// Package holepunch locates the holes in sparse files and punches new
// ones.
//
// ScanChunks reports the logical layout of an open file as an ordered,
// alternating list of Data and Hole segments covering every byte.
// PunchHole deallocates a byte range in place, so that subsequent reads
// of the range return zeros and subsequent scans report it as a hole.
// Copy uses the segment list to duplicate a file without materializing
// its holes.
//
// On Linux, FreeBSD and macOS the scanner walks the file with the
// SEEK_HOLE/SEEK_DATA lseek extension. On Windows it queries the
// allocated ranges of files carrying the sparse attribute. On every
// other platform all operations fail with ErrUnsupportedPlatform.
package holepunch

import (
	"os"

	"github.com/pkg/errors"
)

// ScanChunks scans an open, seekable file and returns its segments,
// ordered by start offset. The result covers [0, length) with no gaps or
// overlaps, adjacent segments always differ in type, and an empty file
// yields an empty list.
//
// Hole segments are guaranteed to contain no non-zero bytes. Data
// segments are ranges the filesystem reports as allocated; they may
// still be logically zero, at the mercy of the filesystem.
//
// Scanning repositions the file's read/write cursor. Callers sharing one
// *os.File across goroutines must serialize access themselves.
//
// Returns ErrUnsupportedPlatform when no backend exists for the current
// OS, and ErrUnsupportedFileSystem when the OS supports the query but
// the filesystem does not.
func ScanChunks(f *os.File) (Segments, error) {
	return scanChunks(f)
}

// PunchHole deallocates the byte range [start, end) of f, which must be
// open for writing. The file's length and all bytes outside the range
// are unaffected; reads of the range return zeros afterwards, and scans
// report it as a hole merged with any adjacent holes.
//
// Some filesystems require start and end to be multiples of the block
// size; a misaligned range surfaces as the underlying OS error.
func PunchHole(f *os.File, start, end uint64) error {
	if start > end {
		return errors.Errorf("invalid range [%d,%d)", start, end)
	}
	if start == end {
		return nil
	}
	return punchHole(f, start, end)
}

// IsSparse reports whether f occupies less physical storage than its
// apparent size. This is an operational test: a file every byte of which
// has been written is never sparse, and a file that merely has
// unwritten trailing blocks is.
func IsSparse(f *os.File) (bool, error) {
	return isSparse(f)
}

// SetSparse marks f as a sparse file. On Windows this sets the sparse
// attribute, without which NTFS allocates storage for zero ranges and
// zeroing cannot release it. Elsewhere it is a no-op, since POSIX
// filesystems need no opt-in.
func SetSparse(f *os.File) error {
	return setSparse(f)
}

// CreateSparse creates the file at path with the given apparent size and
// no allocated storage: its entire content is one hole. The file must
// not already exist. The returned file is open for reading and writing.
func CreateSparse(path string, size int64) (*os.File, error) {
	if size < 0 {
		return nil, errors.Errorf("invalid size %d", size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, errors.Wrap(err, "creating file")
	}
	if err := setSparse(f); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "setting file length")
	}
	return f, nil
}
