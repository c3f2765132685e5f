package interval

import (
	"fmt"
)

// Source is a pull-sequence of regions.  Sweep requires the regions to be
// sorted by (Chrom, Begin).
//
// A source backed by I/O may also implement
//
//	Err() error
//
// which Sweeper.Err and ChromRuns.Err forward once the source is exhausted.
type Source[R Region] interface {
	// Next returns the next region, or false once there are none left.
	Next() (R, bool)
}

// SliceSource is a Source over an in-memory slice.
type SliceSource[R Region] struct {
	regions []R
	idx     int
}

// FromSlice returns a Source yielding regions in order.  The slice is not
// copied.
func FromSlice[R Region](regions []R) *SliceSource[R] {
	return &SliceSource[R]{regions: regions}
}

// Next implements Source.
func (s *SliceSource[R]) Next() (r R, ok bool) {
	if s.idx >= len(s.regions) {
		return
	}
	r = s.regions[s.idx]
	s.idx++
	return r, true
}

// ChromRuns splits a source into one sub-source per run of consecutive
// regions sharing a chromosome.  Sweeping each run separately lifts the
// requirement that chromosomes appear in lexicographic order: BAM files and
// most BED files order contigs by the reference, e.g. chr2 before chr10.
//
// A chromosome that appears in two separate runs means the input was not
// sorted; iteration stops and Err reports it.
//
// Usage:
//
//	runs := NewChromRuns[Entry](src)
//	for chrom, run, ok := runs.Next(); ok; chrom, run, ok = runs.Next() {
//		sw := Sweep[Entry](run)
//		...
//	}
//	if err := runs.Err(); err != nil { ... }
type ChromRuns[R Region] struct {
	src     Source[R]
	head    R
	hasHead bool
	seen    map[string]struct{}
	cur     *chromRun[R]
	err     error
}

// NewChromRuns returns a ChromRuns reading from src.
func NewChromRuns[R Region](src Source[R]) *ChromRuns[R] {
	c := &ChromRuns[R]{
		src:  src,
		seen: make(map[string]struct{}),
	}
	c.pull()
	return c
}

func (c *ChromRuns[R]) pull() {
	c.head, c.hasHead = c.src.Next()
}

// Next returns the chromosome name and regions of the next run.  Regions of
// the previous run that were not consumed are skipped.
func (c *ChromRuns[R]) Next() (string, Source[R], bool) {
	if c.err != nil {
		return "", nil, false
	}
	if c.cur != nil {
		for _, ok := c.cur.Next(); ok; _, ok = c.cur.Next() {
		}
		c.cur = nil
	}
	if !c.hasHead {
		return "", nil, false
	}
	chrom := c.head.Chrom()
	if _, found := c.seen[chrom]; found {
		c.err = fmt.Errorf("interval.ChromRuns: unsorted input (split chromosome %v)", chrom)
		return "", nil, false
	}
	c.seen[chrom] = struct{}{}
	c.cur = &chromRun[R]{parent: c, chrom: chrom}
	return chrom, c.cur, true
}

// Err returns the first error encountered, either a split chromosome or an
// error from the underlying source.
func (c *ChromRuns[R]) Err() error {
	if c.err != nil {
		return c.err
	}
	if e, ok := c.src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

type chromRun[R Region] struct {
	parent *ChromRuns[R]
	chrom  string
}

// Next implements Source.
func (r *chromRun[R]) Next() (reg R, ok bool) {
	p := r.parent
	if !p.hasHead || p.head.Chrom() != r.chrom {
		return
	}
	reg = p.head
	p.pull()
	return reg, true
}

// Err forwards the underlying source's error.
func (r *chromRun[R]) Err() error {
	if e, ok := r.parent.src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// SortChecker wraps a source and stops with an error as soon as a region
// begins before its predecessor on the same chromosome.  Chromosome order is
// not checked here; ChromRuns detects split chromosomes.
type SortChecker[R Region] struct {
	src       Source[R]
	prevChrom string
	prevBegin PosType
	n         int
	err       error
}

// NewSortChecker returns a SortChecker reading from src.
func NewSortChecker[R Region](src Source[R]) *SortChecker[R] {
	return &SortChecker[R]{src: src}
}

// Next implements Source.
func (s *SortChecker[R]) Next() (r R, ok bool) {
	if s.err != nil {
		return
	}
	if r, ok = s.src.Next(); !ok {
		return
	}
	chrom, begin := r.Chrom(), r.Begin()
	if s.n > 0 && chrom == s.prevChrom && begin < s.prevBegin {
		s.err = fmt.Errorf("interval.SortChecker: unsorted input (region %d on %v begins at %d, after %d)", s.n, chrom, begin, s.prevBegin)
		var zero R
		return zero, false
	}
	s.prevChrom, s.prevBegin = chrom, begin
	s.n++
	return r, true
}

// Err returns the sortedness error, or else the underlying source's error.
func (s *SortChecker[R]) Err() error {
	if s.err != nil {
		return s.err
	}
	if e, ok := s.src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}
