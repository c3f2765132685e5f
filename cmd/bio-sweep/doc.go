// Copyright 2021 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// bio-sweep streams sorted genomic intervals (BED or BAM) through a merge
// sweep and reports what it sees.
//
//	bio-sweep events [-format bed|bam] [-one-based] [-targets t.bed] [-out out.tsv] [-bgzip] path
//		One line per open or close event with the overlap depth after it.
//
//	bio-sweep merge path
//		Connected components of overlapping or touching regions.
//
//	bio-sweep coverage path
//		Maximal runs of positions with a constant nonzero depth.
//
//	bio-sweep checksum [-hash seahash|farm|highway] [-out sum.json] path
//		A JSON summary of the event stream, for comparing two inputs.
//
//	bio-sweep help [subcommand]
//		Usage of bio-sweep or one of its subcommands.  A bare -help is
//		treated the same way.
//
// Within a chromosome regions must be sorted by start.  Chromosomes may come in
// any order, but each must form one contiguous run.
package main
