package holepunch

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Copy duplicates src into dst without reading or writing its holes:
// only data segments are copied, at their original offsets. Returns the
// number of bytes written, which for a sparse source is less than its
// apparent size.
//
// When dst supports Truncate (as *os.File does) it is extended to src's
// full length, so a trailing hole in src survives as a trailing hole in
// dst. Otherwise dst ends at the last data byte.
func Copy(dst io.WriteSeeker, src *os.File) (written int64, err error) {
	segs, err := ScanChunks(src)
	if err != nil {
		return 0, err
	}
	for seg := range segs.Data() {
		if _, err := src.Seek(int64(seg.Start), io.SeekStart); err != nil {
			return written, errors.Wrap(err, "seeking in source")
		}
		if _, err := dst.Seek(int64(seg.Start), io.SeekStart); err != nil {
			return written, errors.Wrap(err, "seeking in destination")
		}
		n, err := io.CopyN(dst, src, int64(seg.Len()))
		written += n
		if err != nil {
			return written, errors.Wrap(err, "copying data segment")
		}
	}
	if len(segs) > 0 {
		if t, ok := dst.(interface{ Truncate(int64) error }); ok {
			if err := t.Truncate(int64(segs[len(segs)-1].End)); err != nil {
				return written, errors.Wrap(err, "extending destination")
			}
		}
	}
	return written, nil
}
