package interval

import (
	"sort"
)

// An interval union is stored as a []PosType of sorted endpoints: interval k
// is [endpoints[2k], endpoints[2k+1]).  Merge produces exactly this layout,
// one Component at a time:
//
//	regions    [5, 15) [7, 17) [20, 25)
//	components [5, 17) [20, 25)
//	endpoints  {5, 17, 20, 25}

// EndpointIndex is the number of endpoints <= some position.  It is odd iff
// the position lies inside an interval.
type EndpointIndex uint32

// NewEndpointIndex returns the EndpointIndex of pos.
func NewEndpointIndex(pos PosType, endpoints []PosType) EndpointIndex {
	return EndpointIndex(sort.Search(len(endpoints), func(i int) bool { return endpoints[i] > pos }))
}

// Contained returns whether the position is inside an interval.
func (ei EndpointIndex) Contained() bool {
	return ei&1 != 0
}

// Finished returns whether the position is past all the intervals.
func (ei EndpointIndex) Finished(endpoints []PosType) bool {
	return int(ei) >= len(endpoints)
}

// Begin returns the index of the begin endpoint of the enclosing interval, or
// of the next interval if the position is in a gap.
func (ei EndpointIndex) Begin() EndpointIndex {
	return ei &^ 1
}

// Update moves the index forward to newPos, which must not be smaller than the
// position it currently refers to.  It gallops from the current index before
// bisecting, so a slowly increasing position costs O(log(distance)).
func (ei *EndpointIndex) Update(newPos PosType, endpoints []PosType) {
	lo, hi, step := int(*ei), int(*ei), 1
	for hi < len(endpoints) && endpoints[hi] <= newPos {
		lo = hi + 1
		hi += step
		step *= 2
	}
	if hi > len(endpoints) {
		hi = len(endpoints)
	}
	*ei = EndpointIndex(lo + sort.Search(hi-lo, func(i int) bool { return endpoints[lo+i] > newPos }))
}

// UnionScanner walks the intervals of an endpoint sequence in order, in
// pieces bounded by caller-supplied limits:
//
//	us := NewUnionScanner([]PosType{5, 17, 20, 25})
//	var start, end PosType
//	for us.Scan(&start, &end, 22) {
//		...  // [5, 17), then [20, 22)
//	}
//	for us.Scan(&start, &end, 30) {
//		...  // [22, 25)
//	}
type UnionScanner struct {
	endpoints []PosType
	// k is the index of the begin endpoint of the current interval.
	k int
	// pos is the first position of interval k not yet returned.
	pos PosType
}

// NewUnionScanner returns a UnionScanner positioned at the first interval.
func NewUnionScanner(endpoints []PosType) UnionScanner {
	us := UnionScanner{endpoints: endpoints}
	if len(endpoints) > 0 {
		us.pos = endpoints[0]
	}
	return us
}

// Pos returns the next position to be scanned, or PosTypeMax if there are
// none.
func (us *UnionScanner) Pos() PosType {
	if us.k >= len(us.endpoints) {
		return PosTypeMax
	}
	return us.pos
}

// Scan stores the next covered run [*start, *end) below limit and returns
// true, or returns false if the next covered position is >= limit.
func (us *UnionScanner) Scan(start *PosType, end *PosType, limit PosType) bool {
	if us.k >= len(us.endpoints) || us.pos >= limit {
		return false
	}
	*start = us.pos
	*end = us.endpoints[us.k+1]
	if *end > limit {
		*end = limit
		us.pos = limit
		return true
	}
	us.k += 2
	if us.k < len(us.endpoints) {
		us.pos = us.endpoints[us.k]
	}
	return true
}
