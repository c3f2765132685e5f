package interval

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
)

// NewBEDOpts defines behavior of the BEDUnion constructors.
type NewBEDOpts struct {
	// SAMHeader enables ID-based lookup.
	SAMHeader *sam.Header
	// Invert causes the complement of the interval union, within
	// [0, PosTypeMax), to be returned.  If SAMHeader is provided, any
	// chromosome it names that is absent from the input is fully included.
	// Otherwise only the chromosomes mentioned in the input are included; a
	// single empty interval counts as a mention.
	Invert bool
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// BEDUnion is the union of a set of intervals, stored per chromosome as a
// sorted sequence of disjoint-interval endpoints: the start of interval #k is
// in element [2k] and its end in element [2k+1].
//
// It is built by sweeping the input, so overlapping and touching intervals
// are merged, and empty ones vanish.
type BEDUnion struct {
	// nameMap is a chromosome-keyed map with endpoint-sequence values.  A
	// chromosome mentioned in the input but without any covered base maps to
	// an empty non-nil slice.
	nameMap map[string][]PosType
	// idMap is an optional slice of endpoint sequences, indexed by sam.Header
	// reference ID.  Only initialized when NewBEDOpts.SAMHeader was set.
	idMap [][]PosType
	// totBases is the number of covered bases.
	totBases int

	// lastChrIntervals points to the endpoints for the most recently queried
	// chromosome.
	lastChrIntervals []PosType
	// lastChrName is the name of the last queried-by-name chromosome.  If it's
	// nonempty, it must be in sync with lastChrIntervals.
	lastChrName string
	// lastChrID is the ID of the last queried-by-ID chromosome.  If it's
	// nonnegative, it must be in sync with lastChrIntervals.
	lastChrID int
	// lastPos is the last spot-queried position, or 0.
	lastPos PosType
	// lastIdx is NewEndpointIndex(lastPos, lastChrIntervals) after the first
	// query on the chromosome, and 0 before it.  Cached to
	// accelerate sequential queries.
	lastIdx EndpointIndex
	// isSequential is true if all queries since the last chromosome change have
	// been in order of nondecreasing position.
	isSequential bool
}

func initBEDUnion() BEDUnion {
	return BEDUnion{
		nameMap:   make(map[string][]PosType),
		lastChrID: -1,
	}
}

// resetQuery points the query cache at a new chromosome.
func (u *BEDUnion) resetQuery(intervals []PosType) {
	u.lastChrIntervals = intervals
	u.lastPos = 0
	u.lastIdx = 0
	u.isSequential = true
}

func (u *BEDUnion) query(pos PosType) bool {
	if len(u.lastChrIntervals) == 0 {
		return false
	}
	if u.isSequential {
		if pos >= u.lastPos {
			u.lastIdx.Update(pos, u.lastChrIntervals)
			u.lastPos = pos
			return u.lastIdx.Contained()
		}
		u.isSequential = false
	}
	return NewEndpointIndex(pos, u.lastChrIntervals).Contained()
}

// ContainsByName checks whether the (0-based) interval [pos, pos+1) is
// contained within the BEDUnion, where chromosome is specified by name.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrID = -1
		u.resetQuery(u.nameMap[chrName])
	}
	return u.query(pos)
}

// ContainsByID checks whether the (0-based) interval [pos, pos+1) is contained
// within the BEDUnion, where chromosome is specified by sam.Header ID.  It
// always returns false if the BEDUnion was built without a SAMHeader.
func (u *BEDUnion) ContainsByID(chrID int, pos PosType) bool {
	if chrID < 0 || chrID >= len(u.idMap) {
		return false
	}
	if chrID != u.lastChrID {
		u.lastChrID = chrID
		// lastChrName must not stay in sync with a different chromosome, or the
		// next by-name query would reuse these intervals.
		u.lastChrName = ""
		u.resetQuery(u.idMap[chrID])
	}
	return u.query(pos)
}

// Intersects checks whether [start, end) on chrName intersects the union.
func (u *BEDUnion) Intersects(chrName string, start, end PosType) bool {
	if end <= start {
		return false
	}
	intervals := u.nameMap[chrName]
	idx := NewEndpointIndex(start, intervals)
	if idx.Contained() {
		return true
	}
	return !idx.Finished(intervals) && intervals[idx] < end
}

// Chroms returns the names of all chromosomes mentioned in the input, sorted.
func (u *BEDUnion) Chroms() []string {
	names := make([]string, 0, len(u.nameMap))
	for name := range u.nameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoints returns the endpoint sequence for chrName, or nil if the
// chromosome was never mentioned.  The caller must not modify it.
func (u *BEDUnion) Endpoints(chrName string) []PosType {
	return u.nameMap[chrName]
}

// Scanner returns a UnionScanner over the intervals on chrName.
func (u *BEDUnion) Scanner(chrName string) UnionScanner {
	return NewUnionScanner(u.nameMap[chrName])
}

// TotalBases returns the number of bases covered by the union.
func (u *BEDUnion) TotalBases() int {
	return u.totBases
}

// Clone returns a new BEDUnion which shares the interval set, but has its own
// search state.
func (u *BEDUnion) Clone() BEDUnion {
	return BEDUnion{
		nameMap:   u.nameMap,
		idMap:     u.idMap,
		totBases:  u.totBases,
		lastChrID: -1,
	}
}

func (u *BEDUnion) nameToIDData(header *sam.Header, invert bool) {
	samRefs := header.Refs()
	u.idMap = make([][]PosType, len(samRefs))
	for refID, ref := range samRefs {
		if refID != ref.ID() {
			log.Panicf("interval.BEDUnion: sam.Header ref.ID %d != array position %d", ref.ID(), refID)
		}
		endpoints, ok := u.nameMap[ref.Name()]
		if !ok && invert {
			endpoints = []PosType{0, PosTypeMax}
			u.nameMap[ref.Name()] = endpoints
			u.totBases += int(PosTypeMax)
		}
		u.idMap[refID] = endpoints
	}
}

// invertEndpoints returns the complement of an endpoint sequence within
// [0, PosTypeMax).
func invertEndpoints(endpoints []PosType) []PosType {
	inverted := make([]PosType, 0, len(endpoints)+2)
	if len(endpoints) == 0 || endpoints[0] != 0 {
		inverted = append(inverted, 0)
	} else {
		endpoints = endpoints[1:]
	}
	if n := len(endpoints); n > 0 && endpoints[n-1] == PosTypeMax {
		return append(inverted, endpoints[:n-1]...)
	}
	inverted = append(inverted, endpoints...)
	return append(inverted, PosTypeMax)
}

// coveredBases returns the number of positions inside an endpoint sequence.
func coveredBases(endpoints []PosType) int {
	n := 0
	for k := 0; k+1 < len(endpoints); k += 2 {
		n += int(endpoints[k+1] - endpoints[k])
	}
	return n
}

// newBEDUnionFromSource sweeps src one chromosome at a time, recording the
// connected components.
func newBEDUnionFromSource(src Source[Entry], opts NewBEDOpts) (BEDUnion, error) {
	bedUnion := initBEDUnion()
	runs := NewChromRuns[Entry](NewSortChecker[Entry](src))
	for chrom, run, ok := runs.Next(); ok; chrom, run, ok = runs.Next() {
		endpoints := []PosType{}
		merger := Merge(Sweep[Entry](run))
		for c, ok := merger.Next(); ok; c, ok = merger.Next() {
			endpoints = append(endpoints, c.Start0, c.Limit)
		}
		if opts.Invert {
			endpoints = invertEndpoints(endpoints)
		}
		bedUnion.nameMap[chrom] = endpoints
		bedUnion.totBases += coveredBases(endpoints)
	}
	if err := runs.Err(); err != nil {
		return BEDUnion{}, err
	}
	if opts.SAMHeader != nil {
		bedUnion.nameToIDData(opts.SAMHeader, opts.Invert)
	}
	log.Printf("BED loaded, %d base(s) covered.", bedUnion.totBases)
	return bedUnion, nil
}

// NewBEDUnion loads just the intervals from a sorted (by first coordinate)
// interval-BED, merging touching/overlapping intervals and eliminating empty
// ones in the process.  Chromosomes may appear in any order, but each must
// form one contiguous block.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (BEDUnion, error) {
	return newBEDUnionFromSource(NewBEDScanner(reader, BEDOpts{OneBasedInput: opts.OneBasedInput}), opts)
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped files are decompressed.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	return NewBEDUnionFromPathContext(vcontext.Background(), path, opts)
}

// NewBEDUnionFromPathContext is NewBEDUnionFromPath with an explicit context.
func NewBEDUnionFromPathContext(ctx context.Context, path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	var f *BEDFile
	if f, err = OpenBED(ctx, path, BEDOpts{OneBasedInput: opts.OneBasedInput}); err != nil {
		return
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return newBEDUnionFromSource(f, opts)
}

// NewBEDUnionFromEntries initializes a BEDUnion from a sorted []Entry.
// This ignores opts.OneBasedInput, since Start0 is defined to be zero-based.
func NewBEDUnionFromEntries(entries []Entry, opts NewBEDOpts) (BEDUnion, error) {
	return newBEDUnionFromSource(FromSlice(entries), opts)
}
