package blocks

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/babappa/babappa/bio"
	"github.com/babappa/babappa/gard"
)

// SplitLog is the name of the per-alignment mapping log written next
// to the block files.
const SplitLog = "split_blocks.log"

// Split slices an alignment into one FASTA file per recombination
// block listed in a GARD report. Files are written under
// outRoot/organism/, organism being the alignment file name up to the
// first dot. It returns the paths of the block files written. A failure
// affects only this alignment; the caller is free to continue with
// its siblings.
func Split(fastaFile, jsonFile, outRoot string) ([]string, error) {
	f, err := os.Open(fastaFile)
	if err != nil {
		return nil, err
	}
	ali, err := bio.ParseFasta(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", fastaFile, err)
	}

	length, err := ali.Length()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", fastaFile, err)
	}

	rep, err := gard.ParseFile(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", jsonFile, err)
	}

	scale := rep.ScaleFactor(length)
	mapped := MapBlocks(rep.Breakpoints, scale, length)

	fastaBase := filepath.Base(fastaFile)
	organism := strings.SplitN(fastaBase, ".", 2)[0]
	orgDir := filepath.Join(outRoot, organism)
	if err := os.MkdirAll(orgDir, 0755); err != nil {
		return nil, err
	}

	logFile, err := os.Create(filepath.Join(orgDir, SplitLog))
	if err != nil {
		return nil, err
	}
	defer logFile.Close()
	w := bufio.NewWriter(logFile)
	defer w.Flush()

	fmt.Fprintf(w, "Input FASTA: %s\n", fastaFile)
	fmt.Fprintf(w, "GARD JSON: %s\n", jsonFile)
	fmt.Fprintf(w, "Alignment length: %d nt\n", length)
	fmt.Fprintf(w, "Scale factor: %d\n\n", scale)

	nativeRanges := make([]string, 0, len(mapped))
	ntRanges := make([]string, 0, len(mapped))
	for _, b := range mapped {
		nativeRanges = append(nativeRanges, fmt.Sprintf("%d-%d", b.Native.Start, b.Native.End))
		ntRanges = append(ntRanges, fmt.Sprintf("%d-%d", b.Start, b.End))
	}
	fmt.Fprintf(w, "Blocks (native): %s\n", strings.Join(nativeRanges, ", "))
	fmt.Fprintf(w, "Blocks (nt): %s\n\n", strings.Join(ntRanges, ", "))

	log.Infof("%s: %d blocks, scale=%d, nt ranges: %s",
		fastaBase, len(mapped), scale, strings.Join(ntRanges, ", "))

	var written []string
	for idx, b := range mapped {
		if b.Len() < 3 {
			fmt.Fprintf(w, "Skipped block %d: too short after trimming (<1 codon)\n", idx+1)
			log.Infof("%s: skipped block %d: too short after trimming", fastaBase, idx+1)
			continue
		}

		outFile := filepath.Join(orgDir,
			fmt.Sprintf("%s.gard_block%d_%d-%d.fas", fastaBase, idx+1, b.Native.Start, b.Native.End))
		sub := ali.Slice(b.Start-1, b.End)
		if err := writeFasta(outFile, sub); err != nil {
			return written, err
		}
		written = append(written, outFile)

		fmt.Fprintf(w, "Saved block %d: %s\n", idx+1, outFile)
		fmt.Fprintf(w, "  Trimmed %d nt at start, %d nt at end\n\n", b.TrimStart, b.TrimEnd)
	}

	return written, nil
}

func writeFasta(fn string, seqs bio.Sequences) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := seqs.WriteFasta(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
