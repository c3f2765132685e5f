package interval

import (
	"fmt"
	"math"
	"strings"
)

// PosType is the type used to represent interval coordinates.  Coordinates
// are zero-based and unsigned; uint32 covers every reference contig we care
// about.
type PosType uint32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxUint32

// Region is anything that occupies the half-open interval [Begin, End) on the
// sequence named by Chrom.
//
// Sweep keeps copies of regions after the upstream source has moved on, so
// implementations should be small values (or pointers to data that is never
// mutated afterward).
type Region interface {
	Chrom() string
	Begin() PosType
	End() PosType
}

// Event is one boundary of one region, annotated with the overlap depth at
// that boundary.
//
// For an open event, Depth counts the regions overlapping the boundary
// including the one being opened.  For a close event, Depth counts the regions
// still open after this one ends.  In both cases it is the number of regions
// open on the side of the boundary facing forward in the scan.
type Event[R Region] struct {
	// IsOpen is true for the Begin boundary of Value and false for its End
	// boundary.
	IsOpen bool
	// Index is the zero-based position of Value in the swept source.  Both
	// events for one region carry the same Index.
	Index int
	// Depth is assigned when the event is emitted.
	Depth int
	// Value is the region this boundary belongs to.
	Value R
}

// Position returns the chromosome and coordinate of the boundary: Begin for
// an open event, End for a close event.
func (e Event[R]) Position() (string, PosType) {
	if e.IsOpen {
		return e.Value.Chrom(), e.Value.Begin()
	}
	return e.Value.Chrom(), e.Value.End()
}

// comparePosition orders (chrom, pos) pairs lexicographically.
func comparePosition(chrom0 string, pos0 PosType, chrom1 string, pos1 PosType) int {
	if c := strings.Compare(chrom0, chrom1); c != 0 {
		return c
	}
	switch {
	case pos0 < pos1:
		return -1
	case pos0 > pos1:
		return 1
	}
	return 0
}

// Compare returns (negative int, 0, positive int) if (e<e1, e=e1, e>e1)
// respectively.  Events are ordered by Position(); at an identical position a
// close event sorts before an open one.  Index and Depth are ignored, so two
// boundaries of different regions can compare equal.
func (e Event[R]) Compare(e1 Event[R]) int {
	chrom0, pos0 := e.Position()
	chrom1, pos1 := e1.Position()
	if c := comparePosition(chrom0, pos0, chrom1, pos1); c != 0 {
		return c
	}
	switch {
	case e.IsOpen == e1.IsOpen:
		return 0
	case e.IsOpen:
		return 1
	}
	return -1
}

// Less returns true iff e < e1.
func (e Event[R]) Less(e1 Event[R]) bool {
	return e.Compare(e1) < 0
}

// Equal returns true iff e and e1 are the same kind of boundary at the same
// position.
func (e Event[R]) Equal(e1 Event[R]) bool {
	return e.Compare(e1) == 0
}

// String renders the event as e.g. "Open(chr1, 10, 1)" or "Close(chr1, 20, 0)".
func (e Event[R]) String() string {
	chrom, pos := e.Position()
	kind := "Close"
	if e.IsOpen {
		kind = "Open"
	}
	return fmt.Sprintf("%s(%s, %d, %d)", kind, chrom, pos, e.Depth)
}
