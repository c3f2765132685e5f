package cmd

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/sweep/interval"
)

// writeMerge writes the connected components of the input, one per line:
//
//	#CHROM START END N MAXDEPTH
//
// START and END are zero-based, half-open.  N is the number of regions
// merged into the component.
func writeMerge(ctx context.Context, path string, opts Opts) (err error) {
	in, err := openInput(ctx, path, opts)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	out, err := createOutput(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if err = out.header("#CHROM", "START", "END", "N", "MAXDEPTH"); err != nil {
		return err
	}
	var nComponents, nBases int
	err = sweepRuns(in.src, func(chrom string, sw *interval.Sweeper[interval.Entry], base int) error {
		m := interval.Merge(sw)
		for c, ok := m.Next(); ok; c, ok = m.Next() {
			out.w.WriteString(c.ChrName)
			out.w.WriteUint32(uint32(c.Start0))
			out.w.WriteUint32(uint32(c.Limit))
			out.w.WriteUint32(uint32(c.NRegions))
			out.w.WriteUint32(uint32(c.MaxDepth))
			if err := out.w.EndLine(); err != nil {
				return err
			}
			nComponents++
			nBases += int(c.Limit - c.Start0)
		}
		return nil
	})
	log.Printf("bio-sweep merge: wrote %d component(s), %d base(s) covered, to %s", nComponents, nBases, out.name)
	return err
}

// writeCoverage writes the constant-depth segments of the input:
//
//	#CHROM START END DEPTH
//
// Uncovered gaps are omitted.
func writeCoverage(ctx context.Context, path string, opts Opts) (err error) {
	in, err := openInput(ctx, path, opts)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	out, err := createOutput(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if err = out.header("#CHROM", "START", "END", "DEPTH"); err != nil {
		return err
	}
	maxDepth := 0
	err = sweepRuns(in.src, func(chrom string, sw *interval.Sweeper[interval.Entry], base int) error {
		c := interval.Coverage(sw)
		for s, ok := c.Next(); ok; s, ok = c.Next() {
			out.w.WriteString(s.ChrName)
			out.w.WriteUint32(uint32(s.Start0))
			out.w.WriteUint32(uint32(s.Limit))
			out.w.WriteUint32(uint32(s.Depth))
			if err := out.w.EndLine(); err != nil {
				return err
			}
			if s.Depth > maxDepth {
				maxDepth = s.Depth
			}
		}
		return nil
	})
	log.Printf("bio-sweep coverage: max depth %d, output %s", maxDepth, out.name)
	return err
}
