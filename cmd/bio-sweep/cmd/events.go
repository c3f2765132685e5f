package cmd

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/sweep/interval"
)

// writeEvents writes one TSV line per sweep event:
//
//	#CHROM POS TYPE INDEX DEPTH
//
// POS is zero-based.  INDEX is the zero-based position of the region in the
// input.  For an open event, DEPTH counts the region itself; for a close it
// counts the regions still open afterwards.
func writeEvents(ctx context.Context, path string, opts Opts) (err error) {
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
	if err = out.header("#CHROM", "POS", "TYPE", "INDEX", "DEPTH"); err != nil {
		return err
	}
	nEvents := 0
	err = sweepRuns(in.src, func(chrom string, sw *interval.Sweeper[interval.Entry], base int) error {
		for ev, ok := sw.Next(); ok; ev, ok = sw.Next() {
			_, pos := ev.Position()
			out.w.WriteString(chrom)
			out.w.WriteUint32(uint32(pos))
			if ev.IsOpen {
				out.w.WriteString("open")
			} else {
				out.w.WriteString("close")
			}
			out.w.WriteUint32(uint32(base + ev.Index))
			out.w.WriteUint32(uint32(ev.Depth))
			if err := out.w.EndLine(); err != nil {
				return err
			}
			nEvents++
		}
		return nil
	})
	log.Printf("bio-sweep events: wrote %d event(s) to %s", nEvents, out.name)
	return err
}
