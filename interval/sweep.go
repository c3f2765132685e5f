package interval

import (
	"iter"

	"github.com/biogo/store/llrb"
)

// pendingClose is a not-yet-emitted close event.  It is ordered like Event,
// with Index as a final tie-break; llrb.Tree replaces elements that compare
// equal, so two regions ending at the same position must stay distinct.
type pendingClose[R Region] struct {
	ev Event[R]
}

// Compare implements llrb.Comparable.
func (p *pendingClose[R]) Compare(c llrb.Comparable) int {
	p1 := c.(*pendingClose[R])
	if cmp := p.ev.Compare(p1.ev); cmp != 0 {
		return cmp
	}
	return p.ev.Index - p1.ev.Index
}

// Sweeper lazily converts a source of regions sorted by (Chrom, Begin) into
// the sorted sequence of their open and close events.
//
// It holds one region of lookahead from the source, plus the close events of
// every region opened so far but not yet closed.  Each call to Next does one
// comparison and one tree insert or delete, so memory is proportional to the
// maximum overlap depth, not to the number of regions.
//
// Chromosomes are compared lexicographically.  Feeding regions that are not
// sorted that way does not crash, but the depths are meaningless; see
// ChromRuns for inputs whose chromosomes come in a different order.
//
// A Sweeper is not thread-safe.  It may be abandoned at any point.
type Sweeper[R Region] struct {
	src Source[R]

	// lookahead is the next region to open, valid iff hasLookahead.
	lookahead    R
	lookaheadIdx int
	hasLookahead bool
	nRead        int

	// pending holds *pendingClose[R], smallest position first.
	pending llrb.Tree
}

// Sweep returns a Sweeper over src.  It reads the first region of src
// immediately.
func Sweep[R Region](src Source[R]) *Sweeper[R] {
	s := &Sweeper[R]{src: src}
	s.advance()
	return s
}

// SweepSlice is shorthand for Sweep(FromSlice(regions)).
func SweepSlice[R Region](regions []R) *Sweeper[R] {
	return Sweep[R](FromSlice(regions))
}

func (s *Sweeper[R]) advance() {
	s.lookahead, s.hasLookahead = s.src.Next()
	if s.hasLookahead {
		s.lookaheadIdx = s.nRead
		s.nRead++
	}
}

// popClose removes the smallest pending close event and stamps it with the
// number of regions that stay open after it.
func (s *Sweeper[R]) popClose() Event[R] {
	n := s.pending.Len()
	top := s.pending.Min().(*pendingClose[R])
	s.pending.DeleteMin()
	ev := top.ev
	ev.Depth = n - 1
	return ev
}

// Next returns the next event in sweep order.  It returns false once every
// region of the source has been opened and closed.
func (s *Sweeper[R]) Next() (Event[R], bool) {
	if !s.hasLookahead {
		if s.pending.Len() == 0 {
			return Event[R]{}, false
		}
		return s.popClose(), true
	}
	chrom, begin := s.lookahead.Chrom(), s.lookahead.Begin()
	// A pending close is flushed only when it is strictly before the next
	// open.  At an identical position the open goes first, so touching regions
	// are reported as overlapping.
	if top := s.pending.Min(); top != nil {
		minChrom, minPos := top.(*pendingClose[R]).ev.Position()
		if comparePosition(minChrom, minPos, chrom, begin) < 0 {
			return s.popClose(), true
		}
	}
	s.pending.Insert(&pendingClose[R]{ev: Event[R]{
		IsOpen: false,
		Index:  s.lookaheadIdx,
		Value:  s.lookahead,
	}})
	open := Event[R]{
		IsOpen: true,
		Index:  s.lookaheadIdx,
		Depth:  s.pending.Len(),
		Value:  s.lookahead,
	}
	s.advance()
	return open, true
}

// Pending returns the number of regions opened but not yet closed.
func (s *Sweeper[R]) Pending() int {
	return s.pending.Len()
}

// NRead returns the number of regions pulled from the source so far,
// including the lookahead.
func (s *Sweeper[R]) NRead() int {
	return s.nRead
}

// Err returns the error reported by the source, if the source has an
// Err() method.  It should be checked after Next returns false.
func (s *Sweeper[R]) Err() error {
	if e, ok := s.src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// All returns the remaining events as an iterator.
func (s *Sweeper[R]) All() iter.Seq[Event[R]] {
	return func(yield func(Event[R]) bool) {
		for {
			ev, ok := s.Next()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Collect drains s into a slice.
func Collect[R Region](s *Sweeper[R]) ([]Event[R], error) {
	var events []Event[R]
	for ev := range s.All() {
		events = append(events, ev)
	}
	return events, s.Err()
}
