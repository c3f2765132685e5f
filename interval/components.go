package interval

import (
	"fmt"
)

// This file builds the usual consumers of a sweep: connected-overlap
// components (the interval union) and constant-depth coverage segments.
//
// For example, given the regions
//
//	[5, 15)
//	[7, 17)
//	[20, 25)
//
// the sweep emits
//
//	Open(5, 1) Open(7, 2) Close(15, 1) Close(17, 0) Open(20, 1) Close(25, 0)
//
// Merge turns this into the components [5, 17) and [20, 25), while Coverage
// reports [5, 7):1, [7, 15):2, [15, 17):1 and [20, 25):1.

// Component is a maximal run of overlapping (or touching) regions.  It
// implements Region, so components can themselves be swept.
type Component struct {
	ChrName string
	Start0  PosType
	Limit   PosType
	// NRegions is the number of source regions merged into the component.
	NRegions int
	// MaxDepth is the largest depth reported by the component's events.  It
	// counts the instant where two regions touch, so [10, 20) and [20, 25)
	// give MaxDepth 2 although no base is covered twice.
	MaxDepth int
}

// Chrom implements Region.
func (c Component) Chrom() string { return c.ChrName }

// Begin implements Region.
func (c Component) Begin() PosType { return c.Start0 }

// End implements Region.
func (c Component) End() PosType { return c.Limit }

func (c Component) String() string {
	return fmt.Sprintf("%s:[%d, %d) n=%d max=%d", c.ChrName, c.Start0, c.Limit, c.NRegions, c.MaxDepth)
}

// Merger groups a sweep into connected components.  A component ends at the
// close event whose depth is zero.  Since the sweep opens a region before
// closing one at the same position, touching regions end up in the same
// component.
type Merger[R Region] struct {
	sw     *Sweeper[R]
	cur    Component
	active bool
}

// Merge returns a Merger reading events from sw.
func Merge[R Region](sw *Sweeper[R]) *Merger[R] {
	return &Merger[R]{sw: sw}
}

// Next returns the next component.  Components covering no bases (made only of
// empty regions) are skipped.
func (m *Merger[R]) Next() (Component, bool) {
	for {
		ev, ok := m.sw.Next()
		if !ok {
			return Component{}, false
		}
		chrom, pos := ev.Position()
		if ev.IsOpen {
			if !m.active {
				m.cur = Component{ChrName: chrom, Start0: pos, Limit: pos}
				m.active = true
			}
			m.cur.NRegions++
			if ev.Depth > m.cur.MaxDepth {
				m.cur.MaxDepth = ev.Depth
			}
			continue
		}
		if pos > m.cur.Limit {
			m.cur.Limit = pos
		}
		if ev.Depth == 0 {
			m.active = false
			if m.cur.Limit > m.cur.Start0 {
				return m.cur, true
			}
		}
	}
}

// Err forwards the sweep's source error.
func (m *Merger[R]) Err() error {
	return m.sw.Err()
}

// Segment is a run of positions covered by exactly Depth regions.
type Segment struct {
	ChrName string
	Start0  PosType
	Limit   PosType
	Depth   int
}

// Chrom implements Region.
func (s Segment) Chrom() string { return s.ChrName }

// Begin implements Region.
func (s Segment) Begin() PosType { return s.Start0 }

// End implements Region.
func (s Segment) End() PosType { return s.Limit }

// CoverageScanner turns a sweep into constant-depth segments.  Uncovered gaps
// are not reported, and adjacent segments of equal depth are coalesced.
type CoverageScanner[R Region] struct {
	sw *Sweeper[R]
	// depth is the number of open regions after the last event at
	// (chrom, lastPos).
	depth   int
	chrom   string
	lastPos PosType
	// pending is the segment being extended, valid iff hasPending.
	pending    Segment
	hasPending bool
}

// Coverage returns a CoverageScanner reading events from sw.
func Coverage[R Region](sw *Sweeper[R]) *CoverageScanner[R] {
	return &CoverageScanner[R]{sw: sw}
}

// Next returns the next segment.
func (c *CoverageScanner[R]) Next() (Segment, bool) {
	for {
		ev, ok := c.sw.Next()
		if !ok {
			if c.hasPending {
				c.hasPending = false
				return c.pending, true
			}
			return Segment{}, false
		}
		chrom, pos := ev.Position()
		var out Segment
		emit := false
		if c.depth > 0 && chrom == c.chrom && pos > c.lastPos {
			seg := Segment{ChrName: chrom, Start0: c.lastPos, Limit: pos, Depth: c.depth}
			switch {
			case !c.hasPending:
				c.pending, c.hasPending = seg, true
			case c.pending.ChrName == seg.ChrName && c.pending.Limit == seg.Start0 && c.pending.Depth == seg.Depth:
				c.pending.Limit = seg.Limit
			default:
				out, emit = c.pending, true
				c.pending = seg
			}
		}
		c.depth = ev.Depth
		c.chrom = chrom
		c.lastPos = pos
		if emit {
			return out, true
		}
	}
}

// Err forwards the sweep's source error.
func (c *CoverageScanner[R]) Err() error {
	return c.sw.Err()
}

// MaxDepth drains sw and returns the largest overlap depth seen.
func MaxDepth[R Region](sw *Sweeper[R]) (int, error) {
	deepest := 0
	for ev, ok := sw.Next(); ok; ev, ok = sw.Next() {
		if ev.IsOpen && ev.Depth > deepest {
			deepest = ev.Depth
		}
	}
	return deepest, sw.Err()
}
