package cmd

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"blainsmith.com/go/seahash"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/sweep/interval"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

// chromChecksum summarizes the events of one chromosome.
type chromChecksum struct {
	// Name is the chromosome name.
	Name string
	// NRegions is the number of regions on the chromosome.
	NRegions int
	// NEvents is the number of events; always 2*NRegions.
	NEvents int
	// MaxDepth is the largest overlap depth.
	MaxDepth int
	// Sum is the sum of per-event hashes.  Addition commutes, so the order of
	// events at the same position does not matter.
	Sum uint64
}

// fileChecksum is the checksum of a whole input.
type fileChecksum struct {
	Chroms []chromChecksum
	// Sum is the sum of Chroms[].Sum.
	Sum uint64
}

// eventHasher hashes an encoded event.
type eventHasher func(data []byte) uint64

func newEventHasher(name string) (eventHasher, error) {
	switch name {
	case "", "seahash":
		h := seahash.New()
		return func(data []byte) uint64 {
			h.Reset()
			h.Write(data) // nolint: errcheck
			return h.Sum64()
		}, nil
	case "farm":
		return farm.Hash64, nil
	case "highway":
		var zeroSeed [highwayhash.Size]byte
		return func(data []byte) uint64 {
			return highwayhash.Sum64(data, zeroSeed[:])
		}, nil
	}
	return nil, errors.Errorf("unknown hash function %q; must be seahash, farm or highway", name)
}

func (c *chromChecksum) add(ev interval.Event[interval.Entry], hash eventHasher) {
	var buf [9]byte
	_, pos := ev.Position()
	binary.LittleEndian.PutUint32(buf[:4], uint32(pos))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(ev.Depth))
	if ev.IsOpen {
		buf[8] = 1
		c.NRegions++
	}
	c.NEvents++
	if ev.Depth > c.MaxDepth {
		c.MaxDepth = ev.Depth
	}
	c.Sum += hash(buf[:])
}

func computeChecksum(ctx context.Context, path string, hashName string, opts Opts) (csum fileChecksum, err error) {
	hash, err := newEventHasher(hashName)
	if err != nil {
		return csum, err
	}
	in, err := openInput(ctx, path, opts)
	if err != nil {
		return csum, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	err = sweepRuns(in.src, func(chrom string, sw *interval.Sweeper[interval.Entry], base int) error {
		c := chromChecksum{Name: chrom}
		for ev := range sw.All() {
			c.add(ev, hash)
		}
		csum.Chroms = append(csum.Chroms, c)
		csum.Sum += c.Sum
		return nil
	})
	return csum, err
}

// checksum writes the indented JSON checksum of path to opts.Out.
func checksum(ctx context.Context, path string, hashName string, opts Opts) (err error) {
	csum, err := computeChecksum(ctx, path, hashName, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(csum, "", "  ")
	if err != nil {
		return err
	}
	out, err := createOutput(ctx, opts)
	if err != nil {
		return err
	}
	out.w.WriteBytes(data)
	err = out.w.EndLine()
	if e := out.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
