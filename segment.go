package holepunch

import (
	"fmt"
	"iter"
)

// SegmentType marks a byte range as either a hole or data.
type SegmentType int

const (
	// Hole is a range the filesystem reports as unallocated. Reads of a
	// hole always return zero bytes.
	Hole SegmentType = iota

	// Data is a range the filesystem reports as allocated. Depending on
	// the filesystem it may still consist entirely of zero bytes.
	Data
)

// Opposite returns the other segment type: Hole for Data, Data for Hole.
func (t SegmentType) Opposite() SegmentType {
	if t == Hole {
		return Data
	}
	return Hole
}

func (t SegmentType) String() string {
	if t == Hole {
		return "Hole"
	}
	return "Data"
}

// Segment is a typed half-open byte range [Start, End) within a file.
type Segment struct {
	Type  SegmentType
	Start uint64
	End   uint64
}

// Len returns the number of bytes covered by the segment.
func (s Segment) Len() uint64 { return s.End - s.Start }

// Contains reports whether off falls within [Start, End).
func (s Segment) Contains(off uint64) bool { return s.Start <= off && off < s.End }

// IsHole reports whether the segment is a hole.
func (s Segment) IsHole() bool { return s.Type == Hole }

// IsData reports whether the segment is data.
func (s Segment) IsData() bool { return s.Type == Data }

func (s Segment) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Type, s.Start, s.End)
}

// Segments is an ordered list of segments as produced by ScanChunks:
// sorted by start offset, contiguous from 0 to the file length, with no
// two adjacent segments sharing a type. An empty file scans to an empty
// list.
type Segments []Segment

// Data returns a view over only the data segments, in file order. The
// sequence can be ranged over any number of times.
func (ss Segments) Data() iter.Seq[Segment] { return ss.typed(Data) }

// Holes returns a view over only the hole segments, in file order. The
// sequence can be ranged over any number of times.
func (ss Segments) Holes() iter.Seq[Segment] { return ss.typed(Hole) }

func (ss Segments) typed(t SegmentType) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, s := range ss {
			if s.Type == t && !yield(s) {
				return
			}
		}
	}
}
