package cmd

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/sweep/interval"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"
)

// Opts holds the flags shared by the bio-sweep subcommands.
type Opts struct {
	// Format is the input format, "bed" or "bam".  If empty, it is guessed
	// from the input path.
	Format string
	// OneBased interprets BED input as one-based [start, end].
	OneBased bool
	// FlagExclude skips BAM records whose FLAG intersects it.
	FlagExclude int
	// Targets, if nonempty, is a BED path.  Only regions intersecting its
	// union are swept.
	Targets string
	// Out is the output path.  Empty or "-" means stdout.
	Out string
	// BGZip compresses the output with bgzf.
	BGZip bool
	// Parallelism is the number of bgzf compression goroutines.
	Parallelism int
}

// DefaultOpts are the flag defaults.
var DefaultOpts = Opts{
	FlagExclude: int(interval.DefaultFlagExclude),
	Parallelism: runtime.NumCPU(),
}

func addCommonFlags(cmd *cmdline.Command, opts *Opts) {
	*opts = DefaultOpts
	cmd.Flags.StringVar(&opts.Format, "format", DefaultOpts.Format, "Input format, 'bed' or 'bam'. Guessed from the path if empty")
	cmd.Flags.BoolVar(&opts.OneBased, "one-based", DefaultOpts.OneBased, "Interpret BED input as one-based [start, end] instead of zero-based [start, end)")
	cmd.Flags.IntVar(&opts.FlagExclude, "flag-exclude", DefaultOpts.FlagExclude, "BAM records with a FLAG bit intersecting this value are skipped")
	cmd.Flags.StringVar(&opts.Targets, "targets", DefaultOpts.Targets, "Only sweep regions intersecting the intervals in this BED file")
	cmd.Flags.StringVar(&opts.Out, "out", DefaultOpts.Out, "Output path; stdout if empty")
	cmd.Flags.BoolVar(&opts.BGZip, "bgzip", DefaultOpts.BGZip, "Compress the output with bgzf")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", DefaultOpts.Parallelism, "Number of bgzf compression goroutines")
}

func guessFormat(path string) string {
	p := strings.TrimSuffix(path, ".gz")
	if strings.HasSuffix(p, ".bam") {
		return "bam"
	}
	return "bed"
}

// alignmentEntries presents BAM alignments as plain intervals.
type alignmentEntries struct {
	src *interval.AlignmentSource
}

func (a alignmentEntries) Next() (interval.Entry, bool) {
	aln, ok := a.src.Next()
	if !ok {
		return interval.Entry{}, false
	}
	return interval.Entry{ChrName: aln.Chrom(), Start0: aln.Begin(), Limit: aln.End()}, true
}

func (a alignmentEntries) Err() error {
	return a.src.Err()
}

// targetFilter drops regions that miss the target union.
type targetFilter struct {
	src      interval.Source[interval.Entry]
	targets  *interval.BEDUnion
	nDropped int
}

func (f *targetFilter) Next() (interval.Entry, bool) {
	for {
		e, ok := f.src.Next()
		if !ok {
			return e, false
		}
		// Empty regions have no base to intersect; keep those touching a
		// target position.
		if f.targets.Intersects(e.ChrName, e.Start0, e.Limit) ||
			(e.Start0 == e.Limit && f.targets.ContainsByName(e.ChrName, e.Start0)) {
			return e, true
		}
		f.nDropped++
	}
}

func (f *targetFilter) Err() error {
	if e, ok := f.src.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// regionInput is an opened input, presented as a source of Entries.
type regionInput struct {
	src    interval.Source[interval.Entry]
	closer func() error
	filter *targetFilter
}

func (in *regionInput) Close() error {
	if in.filter != nil {
		log.Debug.Printf("bio-sweep: %d region(s) outside targets", in.filter.nDropped)
	}
	return in.closer()
}

func openInput(ctx context.Context, path string, opts Opts) (*regionInput, error) {
	format := opts.Format
	if format == "" {
		format = guessFormat(path)
	}
	in := &regionInput{}
	switch format {
	case "bed":
		f, err := interval.OpenBED(ctx, path, interval.BEDOpts{OneBasedInput: opts.OneBased})
		if err != nil {
			return nil, err
		}
		in.src, in.closer = f, f.Close
	case "bam":
		infile, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		src, err := interval.NewAlignmentSource(infile.Reader(ctx), sam.Flags(opts.FlagExclude))
		if err != nil {
			_ = infile.Close(ctx)
			return nil, errors.Wrapf(err, "read BAM header of %s", path)
		}
		in.src = alignmentEntries{src}
		in.closer = func() error {
			err := src.Close()
			if e := infile.Close(ctx); e != nil && err == nil {
				err = e
			}
			return err
		}
	default:
		return nil, errors.Errorf("unknown input format %q", format)
	}
	if opts.Targets != "" {
		targets, err := interval.NewBEDUnionFromPathContext(ctx, opts.Targets, interval.NewBEDOpts{})
		if err != nil {
			_ = in.closer()
			return nil, errors.Wrapf(err, "load targets %s", opts.Targets)
		}
		in.filter = &targetFilter{src: in.src, targets: &targets}
		in.src = in.filter
	}
	return in, nil
}

// sweepRuns sweeps src one chromosome run at a time, so chromosomes may come
// in reference order rather than lexicographic order.  base is the number of
// regions in earlier runs; base+ev.Index is a region's position in the whole
// input.  fn must drain the sweeper.
func sweepRuns(src interval.Source[interval.Entry], fn func(chrom string, sw *interval.Sweeper[interval.Entry], base int) error) error {
	runs := interval.NewChromRuns[interval.Entry](interval.NewSortChecker[interval.Entry](src))
	base := 0
	for chrom, run, ok := runs.Next(); ok; chrom, run, ok = runs.Next() {
		sw := interval.Sweep(run)
		if err := fn(chrom, sw, base); err != nil {
			return err
		}
		log.Debug.Printf("bio-sweep: %s: %d region(s)", chrom, sw.NRead())
		base += sw.NRead()
	}
	return runs.Err()
}

// output is a TSV destination, optionally bgzipped.
type output struct {
	ctx  context.Context
	name string
	f    file.File
	bgz  *bgzf.Writer
	w    *tsv.Writer
}

func createOutput(ctx context.Context, opts Opts) (*output, error) {
	o := &output{ctx: ctx, name: "stdout"}
	dst := io.Writer(os.Stdout)
	if opts.Out != "" && opts.Out != "-" {
		f, err := file.Create(ctx, opts.Out)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", opts.Out)
		}
		o.f, o.name = f, opts.Out
		dst = f.Writer(ctx)
	}
	if opts.BGZip {
		parallelism := opts.Parallelism
		if parallelism < 1 {
			parallelism = 1
		}
		o.bgz = bgzf.NewWriter(dst, parallelism)
		dst = o.bgz
	}
	o.w = tsv.NewWriter(dst)
	return o, nil
}

// header writes a header line.
func (o *output) header(cols ...string) error {
	o.w.WriteString(strings.Join(cols, "\t"))
	return o.w.EndLine()
}

func (o *output) Close() error {
	err := o.w.Flush()
	if o.bgz != nil {
		if e := o.bgz.Close(); e != nil && err == nil {
			err = e
		}
	}
	if o.f != nil {
		if e := o.f.Close(o.ctx); e != nil && err == nil {
			err = e
		}
	}
	return err
}
