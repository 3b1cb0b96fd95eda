// Command holeinfo prints the hole/data layout of files, and can punch
// new holes into them.
//
// Usage:
//
//	holeinfo [-punch start:end] FILE...
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/fatih/color"

	"github.com/sparsefile/holepunch"
)

var punchRange = flag.String("punch", "", "punch the byte range `start:end` before scanning; opens the file read-write")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: holeinfo [-punch start:end] FILE...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	status := 0
	for _, path := range flag.Args() {
		if err := run(path); err != nil {
			fmt.Fprintf(os.Stderr, "holeinfo: %s: %v\n", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func run(path string) error {
	mode := os.O_RDONLY
	if *punchRange != "" {
		mode = os.O_RDWR
	}
	f, err := os.OpenFile(path, mode, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if *punchRange != "" {
		start, end, err := parseRange(*punchRange)
		if err != nil {
			return err
		}
		if err := holepunch.PunchHole(f, start, end); err != nil {
			return err
		}
	}

	segs, err := holepunch.ScanChunks(f)
	if err != nil {
		return err
	}

	dataColor := color.New(color.FgGreen).SprintFunc()
	holeColor := color.New(color.FgBlue).SprintFunc()

	fmt.Printf("%s:\n", path)
	var data, holes uint64
	for _, seg := range segs {
		name := dataColor(seg.Type.String())
		if seg.IsHole() {
			name = holeColor(seg.Type.String())
			holes += seg.Len()
		} else {
			data += seg.Len()
		}
		fmt.Printf("  %s  [%12d, %12d)  %10s\n", name, seg.Start, seg.End, datasize.ByteSize(seg.Len()).HumanReadable())
	}
	fmt.Printf("  Data:  %s\n", datasize.ByteSize(data).HumanReadable())
	fmt.Printf("  Holes: %s\n", datasize.ByteSize(holes).HumanReadable())
	fmt.Printf("  Total: %s\n", datasize.ByteSize(data+holes).HumanReadable())
	return nil
}

func parseRange(s string) (start, end uint64, err error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range %q, want start:end", s)
	}
	start, err = strconv.ParseUint(lo, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %v", lo, err)
	}
	end, err = strconv.ParseUint(hi, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %v", hi, err)
	}
	if start > end {
		return 0, 0, fmt.Errorf("invalid range %q: start past end", s)
	}
	return start, end, nil
}
