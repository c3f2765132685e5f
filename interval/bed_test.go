package interval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func scanAll(t *testing.T, s *BEDScanner) ([]Entry, error) {
	var entries []Entry
	for e, ok := s.Next(); ok; e, ok = s.Next() {
		entries = append(entries, e)
	}
	return entries, s.Err()
}

func TestBEDScanner(t *testing.T) {
	input := `# comment
track name=foo
browser position chr1:1-100

chr1	10	20	name	0	+
chr1 15   25
chr2	0	5
`
	entries, err := scanAll(t, NewBEDScanner(strings.NewReader(input), BEDOpts{}))
	assert.NoError(t, err)
	expect.EQ(t, entries, []Entry{{"chr1", 10, 20}, {"chr1", 15, 25}, {"chr2", 0, 5}})

	// Header and blank lines count toward LineIdx.
	s := NewBEDScanner(strings.NewReader(input), BEDOpts{})
	e, ok := s.Next()
	expect.True(t, ok)
	expect.EQ(t, e, Entry{"chr1", 10, 20})
	expect.EQ(t, s.LineIdx(), 5)

	entries, err = scanAll(t, NewBEDScanner(strings.NewReader("chr1\t1\t20\n"), BEDOpts{OneBasedInput: true}))
	assert.NoError(t, err)
	expect.EQ(t, entries, []Entry{{"chr1", 0, 20}})
}

func TestBEDScannerErrors(t *testing.T) {
	tests := []struct {
		input  string
		opts   BEDOpts
		errStr string
	}{
		{"chr1\t10\n", BEDOpts{}, "line 1 has fewer tokens"},
		{"chr1\t10\t20\nchr1\tx\t20\n", BEDOpts{}, "bad start coordinate"},
		{"chr1\t10\t-1\n", BEDOpts{}, "bad end coordinate"},
		{"chr1\t30\t20\n", BEDOpts{}, "invalid coordinate pair on line 1"},
		{"chr1\t0\t20\n", BEDOpts{OneBasedInput: true}, "zero start coordinate"},
	}
	for _, tt := range tests {
		_, err := scanAll(t, NewBEDScanner(strings.NewReader(tt.input), tt.opts))
		assert.NotNil(t, err, tt.input)
		expect.HasSubstr(t, err.Error(), tt.errStr)
	}
}

func TestOpenBEDGzip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpdir, "test.bed.gz")
	f, err := os.Create(path)
	assert.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("chr1\t10\t20\nchr1\t15\t25\n"))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, f.Close())

	bf, err := OpenBED(vcontext.Background(), path, BEDOpts{})
	assert.NoError(t, err)
	events, err := Collect(Sweep[Entry](bf))
	assert.NoError(t, err)
	assert.NoError(t, bf.Close())
	expect.EQ(t, eventStrings(events), []string{
		"Open(chr1, 10, 1)", "Open(chr1, 15, 2)", "Close(chr1, 20, 1)", "Close(chr1, 25, 0)",
	})
}

func TestOpenBEDMissing(t *testing.T) {
	_, err := OpenBED(vcontext.Background(), "testdata/does-not-exist.bed", BEDOpts{})
	expect.NotNil(t, err)
}

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		chrName string
		start0  PosType
		end     PosType
	}{
		{"chr1:1-1000", "chr1", 0, 1000},
		{"chr1:1000", "chr1", 999, 1000},
		{"chr1", "chr1", 0, PosTypeMax},
	}
	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		expect.NoError(t, err)
		expect.EQ(t, result.ChrName, tt.chrName)
		expect.EQ(t, result.Start0, tt.start0)
		expect.EQ(t, result.Limit, tt.end)
	}
	for _, bad := range []string{"", ":1-10", "chr1:0", "chr1:0-10", "chr1:10-5", "chr1:a-5"} {
		_, err := ParseRegionString(bad)
		expect.NotNil(t, err, bad)
	}
}
