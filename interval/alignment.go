package interval

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Alignment adapts a mapped *sam.Record to Region.  Its span is the
// reference interval covered by the alignment, [Pos, End()).
type Alignment struct {
	Rec *sam.Record
}

// Chrom implements Region.
func (a Alignment) Chrom() string { return a.Rec.Ref.Name() }

// Begin implements Region.
func (a Alignment) Begin() PosType { return PosType(a.Rec.Pos) }

// End implements Region.
func (a Alignment) End() PosType { return PosType(a.Rec.End()) }

// DefaultFlagExclude skips unmapped, secondary, QC-fail, duplicate and
// supplementary alignments.
const DefaultFlagExclude = sam.Unmapped | sam.Secondary | sam.QCFail | sam.Duplicate | sam.Supplementary

// AlignmentSource streams the mapped records of a coordinate-sorted BAM as
// Alignments.  It implements Source[Alignment].
type AlignmentSource struct {
	r           *bam.Reader
	flagExclude sam.Flags
	nSkipped    int
	err         error
}

// NewAlignmentSource reads a BAM from r.  Records whose flags intersect
// flagExclude are skipped; unmapped records are always skipped.
func NewAlignmentSource(r io.Reader, flagExclude sam.Flags) (*AlignmentSource, error) {
	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, errors.E(err, "interval.NewAlignmentSource")
	}
	return &AlignmentSource{r: br, flagExclude: flagExclude | sam.Unmapped}, nil
}

// Header returns the BAM header.
func (s *AlignmentSource) Header() *sam.Header {
	return s.r.Header()
}

// Next implements Source.
func (s *AlignmentSource) Next() (Alignment, bool) {
	if s.err != nil {
		return Alignment{}, false
	}
	for {
		rec, err := s.r.Read()
		if err != nil {
			if err != io.EOF {
				s.err = errors.E(err, "interval.AlignmentSource")
			}
			return Alignment{}, false
		}
		if rec.Flags&s.flagExclude != 0 || rec.Ref == nil || rec.Pos < 0 {
			s.nSkipped++
			continue
		}
		return Alignment{Rec: rec}, true
	}
}

// NSkipped returns the number of records filtered out so far.
func (s *AlignmentSource) NSkipped() int {
	return s.nSkipped
}

// Err returns the first read error.  A clean end of file is not an error.
func (s *AlignmentSource) Err() error {
	return s.err
}

// Close closes the BAM reader.
func (s *AlignmentSource) Close() error {
	return s.r.Close()
}
