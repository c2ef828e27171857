// Package qc filters coding sequences before alignment: per-sequence
// quality checks, length-outlier removal and stop-codon masking.
package qc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/stat"

	"github.com/babappa/babappa/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("qc")

const startCodon = "ATG"

// minLength is the minimal coding-sequence length accepted by QC.
const minLength = 300

func validNucleotides(seq string) bool {
	for _, c := range seq {
		switch c {
		case 'A', 'T', 'G', 'C':
		default:
			return false
		}
	}
	return true
}

// ValidateSequence checks one coding sequence: it must start with ATG,
// end with a stop codon, be longer than 300 nt with a triplet length,
// contain only A/T/G/C and carry no internal in-frame stop codon.
// The sequence is uppercased before checking.
func ValidateSequence(seq string) (reason string, ok bool) {
	seq = strings.ToUpper(seq)
	if !strings.HasPrefix(seq, startCodon) {
		return "does not start with ATG", false
	}
	if len(seq) < 3 || !bio.IsStopCodon(seq[len(seq)-3:]) {
		return "does not end with a valid stop codon", false
	}
	if len(seq) <= minLength {
		return fmt.Sprintf("length less than %d bp", minLength), false
	}
	if len(seq)%3 != 0 {
		return "length not divisible by 3", false
	}
	if !validNucleotides(seq) {
		return "contains non-ATGC characters", false
	}
	// the terminal stop codon is expected, anything before it is not
	for i := 3; i+3 <= len(seq)-3; i += 3 {
		if bio.IsStopCodon(seq[i : i+3]) {
			return fmt.Sprintf("internal stop codon at position %d", i+1), false
		}
	}
	return "", true
}

// RemoveLengthOutliers drops sequences whose length falls outside a
// 3xIQR fence around the length quartiles. Fewer than 4 sequences are
// returned unchanged.
func RemoveLengthOutliers(seqs bio.Sequences) bio.Sequences {
	if len(seqs) < 4 {
		return seqs
	}

	lengths := make([]float64, len(seqs))
	for i, seq := range seqs {
		lengths[i] = float64(len(seq.Sequence))
	}
	sort.Float64s(lengths)
	q1 := stat.Quantile(0.25, stat.LinInterp, lengths, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, lengths, nil)
	iqr := q3 - q1
	lower, upper := q1-3*iqr, q3+3*iqr

	kept := make(bio.Sequences, 0, len(seqs))
	for _, seq := range seqs {
		l := float64(len(seq.Sequence))
		if l < lower || l > upper {
			log.Infof("%s: length outlier (%d nt)", seq.Name, len(seq.Sequence))
			continue
		}
		kept = append(kept, seq)
	}
	return kept
}

// Filter applies per-sequence QC, recording each failure in the log
// writer as "name\tFAILED\treason". Survivors are uppercased.
func Filter(seqs bio.Sequences, logWr io.Writer) bio.Sequences {
	passed := make(bio.Sequences, 0, len(seqs))
	for _, seq := range seqs {
		reason, ok := ValidateSequence(seq.Sequence)
		if !ok {
			fmt.Fprintf(logWr, "%s\tFAILED\t%s\n", seq.Name, reason)
			continue
		}
		passed = append(passed, bio.Sequence{
			Name:     seq.Name,
			Sequence: strings.ToUpper(seq.Sequence),
		})
	}
	return passed
}

// Process runs the full QC over one FASTA file: per-sequence checks
// with a log at output+".log.txt", then length-outlier removal. An
// error is returned when no sequence survives, so the caller can skip
// this input and move on.
func Process(input, output string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	seqs, err := bio.ParseFasta(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %v", input, err)
	}
	if len(seqs) == 0 {
		return fmt.Errorf("%s: no sequences found", input)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	logFile, err := os.Create(output + ".log.txt")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logWr := bufio.NewWriter(logFile)
	defer logWr.Flush()

	passed := Filter(seqs, logWr)
	passed = RemoveLengthOutliers(passed)
	if len(passed) == 0 {
		return fmt.Errorf("%s: all sequences removed during QC", input)
	}

	log.Infof("%s: %d/%d sequences passed QC", input, len(passed), len(seqs))
	return writeFasta(output, passed)
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
