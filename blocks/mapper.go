// Package blocks splits alignments into recombination blocks and
// validates the resulting sub-alignments.
package blocks

import (
	"github.com/op/go-logging"

	"github.com/babappa/babappa/gard"
)

// log is the global logging variable.
var log = logging.MustGetLogger("blocks")

// Block describes one recombination block mapped from detector-native
// coordinates to nucleotide coordinates of the source alignment. All
// coordinates are 1-based inclusive.
type Block struct {
	// Native is the detector-native interval the block derives from.
	Native gard.Interval
	// RawStart and RawEnd are the nucleotide coordinates before
	// codon-boundary trimming.
	RawStart int
	RawEnd   int
	// Start and End are the trimmed, codon-aligned nucleotide
	// coordinates.
	Start int
	End   int
	// TrimStart and TrimEnd are the number of nucleotides trimmed
	// from each side by the codon-boundary adjustment.
	TrimStart int
	TrimEnd   int
}

// Len returns the block length in nucleotides.
func (b Block) Len() int {
	return b.End - b.Start + 1
}

func clamp(x, length int) int {
	if x < 1 {
		return 1
	}
	if x > length {
		return length
	}
	return x
}

// adjustToCodon moves start forward to the next codon boundary and end
// backward to the previous one. Applying it to an already-adjusted
// interval is a no-op.
func adjustToCodon(start, end int) (int, int) {
	if (start-1)%3 != 0 {
		start += 3 - (start-1)%3
	}
	if end%3 != 0 {
		end -= end % 3
	}
	return start, end
}

// MapBlocks converts native-unit intervals to codon-aligned nucleotide
// blocks of an alignment of length alignmentLen. Input order is
// preserved. Intervals that trim away completely (start > end) are
// dropped; blocks shorter than one codon are kept and left for the
// extractor to skip with a notice.
func MapBlocks(bps []gard.Interval, scale, alignmentLen int) []Block {
	mapped := make([]Block, 0, len(bps))
	for _, iv := range bps {
		rawStart := clamp((iv.Start-1)*scale+1, alignmentLen)
		rawEnd := clamp(iv.End*scale, alignmentLen)

		start, end := adjustToCodon(rawStart, rawEnd)
		trimStart := start - rawStart
		trimEnd := rawEnd - end
		start = clamp(start, alignmentLen)
		end = clamp(end, alignmentLen)

		if start > end {
			// the whole interval was trimmed away
			continue
		}
		mapped = append(mapped, Block{
			Native:    iv,
			RawStart:  rawStart,
			RawEnd:    rawEnd,
			Start:     start,
			End:       end,
			TrimStart: trimStart,
			TrimEnd:   trimEnd,
		})
	}
	return mapped
}
