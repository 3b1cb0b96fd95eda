//go:build windows

package holepunch

import (
	"io"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// allocatedRange mirrors FILE_ALLOCATED_RANGE_BUFFER, the in/out record
// of FSCTL_QUERY_ALLOCATED_RANGES.
type allocatedRange struct {
	FileOffset int64
	Length     int64
}

// rangesPerQuery bounds a single FSCTL_QUERY_ALLOCATED_RANGES call. A
// file with more discontiguous extents is re-queried from the end of the
// last extent returned.
const rangesPerQuery = 512

// scanChunks reconstructs the segment list from the file's allocated
// ranges. A file without the sparse attribute never has holes, so it
// short-circuits to a single data segment.
func scanChunks(f *os.File) (Segments, error) {
	length, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seeking to end of file")
	}
	if length == 0 {
		return Segments{}, nil
	}

	h := windows.Handle(f.Fd())
	sparse, err := handleIsSparse(h)
	if err != nil {
		return nil, err
	}
	if !sparse {
		return Segments{{Type: Data, Start: 0, End: uint64(length)}}, nil
	}

	ranges, err := queryAllocatedRanges(h, length)
	if err != nil {
		return nil, err
	}

	// Allocated ranges arrive in ascending order; the gaps between them
	// and the tail after the last one are the holes. Extents meeting
	// exactly, which a resumed query can produce, fold into one data
	// segment.
	segs := make(Segments, 0, 2*len(ranges)+1)
	prevEnd := int64(0)
	for _, r := range ranges {
		if r.FileOffset > prevEnd {
			segs = append(segs, Segment{Type: Hole, Start: uint64(prevEnd), End: uint64(r.FileOffset)})
		}
		if n := len(segs); n > 0 && segs[n-1].Type == Data && segs[n-1].End == uint64(r.FileOffset) {
			segs[n-1].End = uint64(r.FileOffset + r.Length)
		} else {
			segs = append(segs, Segment{Type: Data, Start: uint64(r.FileOffset), End: uint64(r.FileOffset + r.Length)})
		}
		prevEnd = r.FileOffset + r.Length
	}
	if prevEnd < length {
		segs = append(segs, Segment{Type: Hole, Start: uint64(prevEnd), End: uint64(length)})
	}
	return segs, nil
}

// queryAllocatedRanges enumerates the allocated extents of [0, length).
// Each DeviceIoControl call fills at most rangesPerQuery records; when
// the driver reports more data remains, the query resumes from the end
// of the last extent returned.
func queryAllocatedRanges(h windows.Handle, length int64) ([]allocatedRange, error) {
	var ranges []allocatedRange
	var out [rangesPerQuery]allocatedRange
	recSize := uint32(unsafe.Sizeof(out[0]))

	next := int64(0)
	for next < length {
		in := allocatedRange{FileOffset: next, Length: length - next}
		var bytesReturned uint32
		err := windows.DeviceIoControl(
			h,
			windows.FSCTL_QUERY_ALLOCATED_RANGES,
			(*byte)(unsafe.Pointer(&in)), recSize,
			(*byte)(unsafe.Pointer(&out[0])), uint32(len(out))*recSize,
			&bytesReturned,
			nil,
		)
		more := false
		if err != nil {
			if err != windows.ERROR_MORE_DATA {
				return nil, errors.Wrap(err, "querying allocated ranges")
			}
			more = true
		}
		n := int(bytesReturned / recSize)
		if more && n == 0 {
			// The driver claims more data but returned no records; bail
			// out rather than loop forever.
			return nil, errors.Wrap(windows.ERROR_MORE_DATA, "querying allocated ranges")
		}
		ranges = append(ranges, out[:n]...)
		if !more {
			break
		}
		last := out[n-1]
		next = last.FileOffset + last.Length
	}
	return ranges, nil
}

func handleIsSparse(h windows.Handle) (bool, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return false, errors.Wrap(err, "querying file information")
	}
	return info.FileAttributes&windows.FILE_ATTRIBUTE_SPARSE_FILE != 0, nil
}

func isSparse(f *os.File) (bool, error) {
	return handleIsSparse(windows.Handle(f.Fd()))
}
