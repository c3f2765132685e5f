package interval

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func eventStrings[R Region](events []Event[R]) []string {
	s := make([]string, len(events))
	for i, ev := range events {
		s[i] = ev.String()
	}
	return s
}

func sweepEntries(t *testing.T, entries []Entry) []Event[Entry] {
	events, err := Collect(SweepSlice(entries))
	assert.NoError(t, err)
	return events
}

func TestSweepExamples(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []string
	}{
		{
			"empty",
			nil,
			[]string{},
		},
		{
			"single",
			[]Entry{{"chr1", 10, 20}},
			[]string{"Open(chr1, 10, 1)", "Close(chr1, 20, 0)"},
		},
		{
			"disjoint",
			[]Entry{{"chr1", 10, 20}, {"chr1", 30, 40}},
			[]string{"Open(chr1, 10, 1)", "Close(chr1, 20, 0)", "Open(chr1, 30, 1)", "Close(chr1, 40, 0)"},
		},
		{
			"overlap",
			[]Entry{{"chr1", 10, 20}, {"chr1", 15, 25}, {"chr1", 30, 40}},
			[]string{
				"Open(chr1, 10, 1)", "Open(chr1, 15, 2)", "Close(chr1, 20, 1)",
				"Close(chr1, 25, 0)", "Open(chr1, 30, 1)", "Close(chr1, 40, 0)",
			},
		},
		{
			// The open at 20 is emitted before the close at 20.
			"touching",
			[]Entry{{"chr1", 10, 20}, {"chr1", 20, 30}},
			[]string{"Open(chr1, 10, 1)", "Open(chr1, 20, 2)", "Close(chr1, 20, 1)", "Close(chr1, 30, 0)"},
		},
		{
			"nested",
			[]Entry{{"chr1", 0, 100}, {"chr1", 10, 20}, {"chr1", 30, 40}},
			[]string{
				"Open(chr1, 0, 1)", "Open(chr1, 10, 2)", "Close(chr1, 20, 1)",
				"Open(chr1, 30, 2)", "Close(chr1, 40, 1)", "Close(chr1, 100, 0)",
			},
		},
		{
			"empty region",
			[]Entry{{"chr1", 5, 5}, {"chr1", 10, 20}},
			[]string{"Open(chr1, 5, 1)", "Close(chr1, 5, 0)", "Open(chr1, 10, 1)", "Close(chr1, 20, 0)"},
		},
		{
			"two chromosomes",
			[]Entry{{"chr1", 10, 50}, {"chr2", 0, 5}},
			[]string{"Open(chr1, 10, 1)", "Close(chr1, 50, 0)", "Open(chr2, 0, 1)", "Close(chr2, 5, 0)"},
		},
	}
	for _, tt := range tests {
		got := eventStrings(sweepEntries(t, tt.entries))
		expect.EQ(t, got, tt.want, tt.name)
	}
}

func TestSweepIdenticalEnds(t *testing.T) {
	// Three regions closing at the same position must stay distinct in the
	// pending set.
	entries := []Entry{{"chr1", 0, 10}, {"chr1", 2, 10}, {"chr1", 4, 10}}
	events := sweepEntries(t, entries)
	expect.EQ(t, len(events), 6)
	var closeDepths []int
	closed := map[int]bool{}
	for _, ev := range events[3:] {
		expect.False(t, ev.IsOpen)
		closeDepths = append(closeDepths, ev.Depth)
		closed[ev.Index] = true
	}
	expect.EQ(t, closeDepths, []int{2, 1, 0})
	expect.EQ(t, len(closed), 3)
}

func TestSweepIndexAndValue(t *testing.T) {
	entries := []Entry{{"chr1", 10, 20}, {"chr1", 15, 25}}
	events := sweepEntries(t, entries)
	expect.EQ(t, events[0].Index, 0)
	expect.EQ(t, events[1].Index, 1)
	expect.EQ(t, events[2].Index, 0)
	expect.EQ(t, events[3].Index, 1)
	for _, ev := range events {
		expect.EQ(t, ev.Value, entries[ev.Index])
	}
}

func TestSweepLazy(t *testing.T) {
	src := FromSlice([]Entry{{"chr1", 10, 20}, {"chr1", 30, 40}, {"chr1", 50, 60}})
	sw := Sweep[Entry](src)
	// Only the lookahead is read up front.
	expect.EQ(t, sw.NRead(), 1)
	ev, ok := sw.Next()
	assert.True(t, ok)
	expect.EQ(t, ev.String(), "Open(chr1, 10, 1)")
	expect.EQ(t, sw.NRead(), 2)
	expect.EQ(t, sw.Pending(), 1)
	ev, ok = sw.Next()
	assert.True(t, ok)
	expect.EQ(t, ev.String(), "Close(chr1, 20, 0)")
	expect.EQ(t, sw.NRead(), 2)
	expect.EQ(t, sw.Pending(), 0)

	// Abandoning the iterator early is fine.
	n := 0
	for range sw.All() {
		n++
		if n == 2 {
			break
		}
	}
	expect.EQ(t, n, 2)
	ev, ok = sw.Next()
	assert.True(t, ok)
	expect.EQ(t, ev.String(), "Open(chr1, 50, 1)")
	ev, ok = sw.Next()
	assert.True(t, ok)
	expect.EQ(t, ev.String(), "Close(chr1, 60, 0)")
	_, ok = sw.Next()
	expect.False(t, ok)
	_, ok = sw.Next()
	expect.False(t, ok)
}

// randomEntries returns n sorted regions on one chromosome, some of them
// empty, with coordinates below maxPos.
func randomEntries(r *rand.Rand, n int, maxPos int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		start := r.Intn(maxPos)
		length := r.Intn(maxPos/8 + 1)
		if r.Intn(10) == 0 {
			length = 0
		}
		if start+length > maxPos {
			length = maxPos - start
		}
		entries[i] = Entry{"chr1", PosType(start), PosType(start + length)}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start0 < entries[j].Start0 })
	return entries
}

func TestSweepProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		entries := randomEntries(r, r.Intn(60), 300)
		events := sweepEntries(t, entries)
		msg := fmt.Sprintf("iter %d: %v", iter, entries)

		// Count law.
		assert.EQ(t, len(events), 2*len(entries), msg)

		openAt := make([]int, len(entries))
		closeAt := make([]int, len(entries))
		for i := range openAt {
			openAt[i], closeAt[i] = -1, -1
		}
		open := map[int]bool{}
		for k, ev := range events {
			expect.GE(t, ev.Depth, 0, msg)
			if k > 0 {
				// Positions never decrease, and at one position opens come first.
				prev := events[k-1]
				c0, p0 := prev.Position()
				c1, p1 := ev.Position()
				expect.LE(t, comparePosition(c0, p0, c1, p1), 0, msg)
				if p0 == p1 && !prev.IsOpen {
					expect.False(t, ev.IsOpen, msg)
				}
			}
			if ev.IsOpen {
				expect.EQ(t, openAt[ev.Index], -1, msg)
				openAt[ev.Index] = k
				open[ev.Index] = true
				expect.EQ(t, ev.Depth, len(open), msg)
			} else {
				expect.EQ(t, closeAt[ev.Index], -1, msg)
				closeAt[ev.Index] = k
				delete(open, ev.Index)
				expect.EQ(t, ev.Depth, len(open), msg)
			}
		}
		// Pairing law.
		for i := range entries {
			assert.True(t, openAt[i] >= 0 && closeAt[i] > openAt[i], msg)
		}
		// Open depth counts the earlier regions reaching this one's start,
		// touching ones included.
		for i, e := range entries {
			want := 1
			for j := 0; j < i; j++ {
				if entries[j].Limit >= e.Start0 {
					want++
				}
			}
			expect.EQ(t, events[openAt[i]].Depth, want, msg)
		}
	}
}

func TestSweepDeterminism(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	entries := randomEntries(r, 100, 1000)
	expect.EQ(t, eventStrings(sweepEntries(t, entries)), eventStrings(sweepEntries(t, entries)))
}

type failingSource struct {
	entries []Entry
	err     error
}

func (s *failingSource) Next() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return e, true
}

func (s *failingSource) Err() error { return s.err }

func TestSweepErr(t *testing.T) {
	sw := Sweep[Entry](&failingSource{entries: []Entry{{"chr1", 0, 1}}, err: fmt.Errorf("disk on fire")})
	events, err := Collect(sw)
	expect.EQ(t, len(events), 2)
	expect.HasSubstr(t, err.Error(), "disk on fire")

	_, err = Collect(SweepSlice([]Entry{{"chr1", 0, 1}}))
	expect.NoError(t, err)
}

func TestChromRuns(t *testing.T) {
	entries := []Entry{
		{"chr2", 10, 20}, {"chr2", 15, 25},
		{"chr10", 0, 5},
		{"chrX", 1, 2}, {"chrX", 3, 4},
	}
	runs := NewChromRuns[Entry](FromSlice(entries))
	var got []string
	for chrom, run, ok := runs.Next(); ok; chrom, run, ok = runs.Next() {
		depth, err := MaxDepth(Sweep(run))
		assert.NoError(t, err)
		got = append(got, fmt.Sprintf("%s:%d", chrom, depth))
	}
	expect.NoError(t, runs.Err())
	expect.EQ(t, got, []string{"chr2:2", "chr10:1", "chrX:1"})

	// Unconsumed regions of a run are skipped.
	runs = NewChromRuns[Entry](FromSlice(entries))
	var chroms []string
	for chrom, _, ok := runs.Next(); ok; chrom, _, ok = runs.Next() {
		chroms = append(chroms, chrom)
	}
	expect.EQ(t, chroms, []string{"chr2", "chr10", "chrX"})

	split := []Entry{{"chr1", 0, 1}, {"chr2", 0, 1}, {"chr1", 5, 6}}
	runs = NewChromRuns[Entry](FromSlice(split))
	n := 0
	for _, _, ok := runs.Next(); ok; _, _, ok = runs.Next() {
		n++
	}
	expect.EQ(t, n, 2)
	expect.HasSubstr(t, runs.Err().Error(), "split chromosome chr1")
}

func TestSortChecker(t *testing.T) {
	src := NewSortChecker[Entry](FromSlice([]Entry{{"chr1", 10, 20}, {"chr1", 10, 12}, {"chr2", 0, 1}, {"chr2", 0, 3}}))
	events, err := Collect(Sweep[Entry](src))
	expect.NoError(t, err)
	expect.EQ(t, len(events), 8)

	src = NewSortChecker[Entry](FromSlice([]Entry{{"chr1", 10, 20}, {"chr1", 5, 12}}))
	events, err = Collect(Sweep[Entry](src))
	expect.EQ(t, len(events), 2)
	expect.HasSubstr(t, err.Error(), "unsorted input")
}
