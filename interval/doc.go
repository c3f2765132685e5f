// Package interval turns sorted genomic intervals into a stream of boundary
// events annotated with overlap depth, and builds interval unions, connected
// components and coverage tracks on top of that stream.
//
// The core is Sweep: given any Source of Regions sorted by (Chrom, Begin), it
// merges the region starts with a tree of pending ends, holding a single
// region of lookahead, so memory is proportional to the overlap depth rather
// than the number of regions.  Sources are provided for BED files
// (BEDScanner), BAM alignments (AlignmentSource) and slices (FromSlice).
//
// Coordinates are zero-based, half-open and fit in a PosType (uint32).
package interval
