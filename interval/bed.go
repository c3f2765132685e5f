package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// Entry represents a single interval, with 0-based half-open coordinates
// [Start0, Limit).  It implements Region.
type Entry struct {
	ChrName string
	Start0  PosType
	Limit   PosType
}

// Chrom implements Region.
func (e Entry) Chrom() string { return e.ChrName }

// Begin implements Region.
func (e Entry) Begin() PosType { return e.Start0 }

// End implements Region.
func (e Entry) End() PosType { return e.Limit }

// String renders the entry in BED-like "chr1:[10, 20)" form.
func (e Entry) String() string {
	return fmt.Sprintf("%s:[%d, %d)", e.ChrName, e.Start0, e.Limit)
}

// BEDOpts defines behavior of this package's BED-loading functions.
type BEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

var (
	trackPrefix   = []byte("track")
	browserPrefix = []byte("browser")
)

// isHeaderLine returns true for comment, "track" and "browser" lines.
func isHeaderLine(firstToken []byte) bool {
	return firstToken[0] == '#' || bytes.Equal(firstToken, trackPrefix) || bytes.Equal(firstToken, browserPrefix)
}

// BEDScanner streams the first three columns of a BED file as Entries.  It
// implements Source[Entry].  Columns past the third are ignored.
//
// BEDScanner does not check sortedness; NewBEDUnion and ChromRuns do.
type BEDScanner struct {
	scanner *bufio.Scanner
	opts    BEDOpts
	tokens  [3][]byte
	lineIdx int
	err     error
}

// NewBEDScanner returns a BEDScanner reading from r.
func NewBEDScanner(r io.Reader, opts BEDOpts) *BEDScanner {
	return &BEDScanner{
		scanner: bufio.NewScanner(r),
		opts:    opts,
	}
}

// Next implements Source.  Once it returns false, Err should be checked.
func (s *BEDScanner) Next() (entry Entry, ok bool) {
	if s.err != nil {
		return
	}
	for s.scanner.Scan() {
		s.lineIdx++
		curLine := s.scanner.Bytes()
		nToken := getTokens(s.tokens[:], curLine)
		if nToken == 0 || isHeaderLine(s.tokens[0]) {
			continue
		}
		if nToken != 3 {
			s.err = fmt.Errorf("interval.BEDScanner: line %d has fewer tokens than expected", s.lineIdx)
			return
		}
		if entry, s.err = s.parseEntry(); s.err != nil {
			return
		}
		return entry, true
	}
	s.err = s.scanner.Err()
	return
}

func (s *BEDScanner) parseEntry() (entry Entry, err error) {
	parsedStart, err := strconv.ParseUint(gunsafe.BytesToString(s.tokens[1]), 10, 32)
	if err != nil {
		return entry, fmt.Errorf("interval.BEDScanner: bad start coordinate %q on line %d", s.tokens[1], s.lineIdx)
	}
	if s.opts.OneBasedInput {
		if parsedStart == 0 {
			return entry, fmt.Errorf("interval.BEDScanner: zero start coordinate on line %d of one-based input", s.lineIdx)
		}
		parsedStart--
	}
	parsedEnd, err := strconv.ParseUint(gunsafe.BytesToString(s.tokens[2]), 10, 32)
	if err != nil {
		return entry, fmt.Errorf("interval.BEDScanner: bad end coordinate %q on line %d", s.tokens[2], s.lineIdx)
	}
	if parsedEnd < parsedStart {
		return entry, fmt.Errorf("interval.BEDScanner: invalid coordinate pair on line %d", s.lineIdx)
	}
	// The chromosome name must be copied, since it refers to bytes on the
	// current line that the scanner will overwrite.
	entry.ChrName = string(s.tokens[0])
	entry.Start0 = PosType(parsedStart)
	entry.Limit = PosType(parsedEnd)
	return entry, nil
}

// Err returns the first parse or read error, or nil at a clean end of input.
func (s *BEDScanner) Err() error {
	return s.err
}

// LineIdx returns the (1-based) number of the last line read.
func (s *BEDScanner) LineIdx() int {
	return s.lineIdx
}

// BEDFile is a BEDScanner over an opened file.  Close must be called when
// done.
type BEDFile struct {
	*BEDScanner
	ctx    context.Context
	path   string
	infile file.File
	gz     *gzip.Reader
}

// OpenBED opens a (possibly gzipped) BED file.  Any path supported by
// grailbio/base/file is accepted.
func OpenBED(ctx context.Context, path string, opts BEDOpts) (*BEDFile, error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "interval.OpenBED", path)
	}
	f := &BEDFile{ctx: ctx, path: path, infile: infile}
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if f.gz, err = gzip.NewReader(reader); err != nil {
			_ = infile.Close(ctx)
			return nil, errors.E(err, "interval.OpenBED", path)
		}
		reader = f.gz
	}
	f.BEDScanner = NewBEDScanner(reader, opts)
	return f, nil
}

// Close releases the underlying file.
func (f *BEDFile) Close() (err error) {
	if f.gz != nil {
		err = f.gz.Close()
	}
	if e := f.infile.Close(f.ctx); e != nil && err == nil {
		err = errors.E(e, "interval.BEDFile.Close", f.path)
	}
	return
}

// ParseRegionString parses a region string of one of the forms
//
//	[contig ID]:[1-based first pos]-[last pos]
//	[contig ID]:[1-based pos]
//	[contig ID]
//
// returning an Entry with 0-based interval boundaries.  The interval
// [0, PosTypeMax) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.ChrName = region
		result.Limit = PosTypeMax
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.ChrName = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 uint64
		if pos1, err = strconv.ParseUint(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 == 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.Limit = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1, end uint64
	if start1, err = strconv.ParseUint(start1Str, 10, 32); err != nil {
		return
	}
	if start1 == 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	if end, err = strconv.ParseUint(endStr, 10, 32); err != nil {
		return
	}
	if end < start1 {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.Limit = PosType(end)
	return
}
