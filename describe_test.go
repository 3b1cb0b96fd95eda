package holepunch_test

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"reflect"
	"slices"
	"testing"

	"github.com/sparsefile/holepunch"
)

// Generator configuration for the randomized round-trip tests. Split
// points land on block boundaries so the pattern survives the trip
// through a real filesystem intact.
const (
	blockSize = 4096
	maxSplits = 50
)

// sparseDescription is a block-aligned alternating hole/data pattern:
// it starts at offset 0 with startType and flips type at each split
// point. The last split point is the file length.
type sparseDescription struct {
	startType   holepunch.SegmentType
	splitPoints []uint8 // in units of blockSize
}

func newSparseDescription(start holepunch.SegmentType, points []uint8) sparseDescription {
	points = slices.DeleteFunc(slices.Clone(points), func(p uint8) bool { return p == 0 })
	if len(points) > maxSplits {
		points = points[:maxSplits]
	}
	slices.Sort(points)
	points = slices.Compact(points)
	return sparseDescription{startType: start, splitPoints: points}
}

func (d sparseDescription) segments() holepunch.Segments {
	segs := make(holepunch.Segments, 0, len(d.splitPoints))
	typ := d.startType
	prev := uint64(0)
	for _, p := range d.splitPoints {
		point := uint64(p) * blockSize
		segs = append(segs, holepunch.Segment{Type: typ, Start: prev, End: point})
		prev = point
		typ = typ.Opposite()
	}
	return segs
}

func (d sparseDescription) length() uint64 {
	if len(d.splitPoints) == 0 {
		return 0
	}
	return uint64(d.splitPoints[len(d.splitPoints)-1]) * blockSize
}

// materialize builds a real temporary file from the description: data
// segments get non-zero bytes, hole segments stay unwritten.
func (d sparseDescription) materialize(t *testing.T) *os.File {
	t.Helper()
	f := newSparseTemp(t)
	for seg := range d.segments().Data() {
		buf := bytes.Repeat([]byte{1}, int(seg.Len()))
		if _, err := f.WriteAt(buf, int64(seg.Start)); err != nil {
			t.Fatalf("writing data segment %v: %v", seg, err)
		}
	}
	if err := f.Truncate(int64(d.length())); err != nil {
		t.Fatalf("setting file length: %v", err)
	}
	return f
}

// Generate implements quick.Generator: a random start type and up to
// maxSplits random block-sized split points.
func (sparseDescription) Generate(r *rand.Rand, size int) reflect.Value {
	start := holepunch.Hole
	if r.Intn(2) == 0 {
		start = holepunch.Data
	}
	points := make([]uint8, r.Intn(maxSplits+1))
	for i := range points {
		points[i] = uint8(r.Intn(256))
	}
	return reflect.ValueOf(newSparseDescription(start, points))
}

// newSparseTemp creates an empty temp file able to hold holes.
func newSparseTemp(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sparse-*.bin")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	if err := holepunch.SetSparse(f); err != nil {
		t.Fatalf("setting sparse attribute: %v", err)
	}
	return f
}

// requireHoleReporting skips the test unless the filesystem behind the
// test's temp dir reports unwritten ranges as holes. Filesystems without
// SEEK_HOLE support, and those that report everything as allocated, are
// both legitimate at runtime but make layout assertions meaningless.
func requireHoleReporting(t *testing.T) {
	t.Helper()
	f := newSparseTemp(t)
	if err := f.Truncate(4 * blockSize); err != nil {
		t.Fatalf("truncating probe file: %v", err)
	}
	segs, err := holepunch.ScanChunks(f)
	if errors.Is(err, holepunch.ErrUnsupportedPlatform) || errors.Is(err, holepunch.ErrUnsupportedFileSystem) {
		t.Skipf("sparse scanning not supported here: %v", err)
	}
	if err != nil {
		t.Fatalf("scanning probe file: %v", err)
	}
	if len(segs) != 1 || !segs[0].IsHole() {
		t.Skipf("filesystem does not report unwritten ranges as holes: %v", segs)
	}
}

// requireHolePunching skips the test unless punching works on the
// filesystem behind the test's temp dir.
func requireHolePunching(t *testing.T) {
	t.Helper()
	f := newSparseTemp(t)
	if _, err := f.WriteAt(bytes.Repeat([]byte{1}, 2*blockSize), 0); err != nil {
		t.Fatalf("writing probe file: %v", err)
	}
	if err := holepunch.PunchHole(f, 0, blockSize); err != nil {
		t.Skipf("hole punching not supported here: %v", err)
	}
}
