package qc

import (
	"fmt"
	"os"
	"strings"

	"github.com/babappa/babappa/bio"
)

// MaskPolicy controls stop-codon masking.
type MaskPolicy struct {
	// ExemptTerminal leaves the final codon unmasked even if it is
	// a stop codon. The default policy masks every codon, which is
	// what downstream tree inference expects.
	ExemptTerminal bool
	// Tolerance is the maximal fraction of masked codons; sequences
	// above it are dropped.
	Tolerance float64
}

// DefaultMaskPolicy masks all codons with a 20% tolerance.
var DefaultMaskPolicy = MaskPolicy{Tolerance: 0.20}

// Mask replaces stop codons and ambiguous (N-containing) codons with
// gap triplets. A trailing partial codon is trimmed first. It returns
// the masked sequence and the fraction of codons masked.
func Mask(seq string, exemptTerminal bool) (string, float64) {
	seq = seq[:len(seq)-len(seq)%3]
	if len(seq) < 3 {
		return "", 0
	}

	var b strings.Builder
	b.Grow(len(seq))
	masked := 0
	total := len(seq) / 3
	for i := 0; i+3 <= len(seq); i += 3 {
		codon := seq[i : i+3]
		terminal := i+3 == len(seq)
		upper := strings.ToUpper(codon)
		if (bio.IsStopCodon(upper) || strings.Contains(upper, "N")) &&
			!(terminal && exemptTerminal) {
			b.WriteString("---")
			masked++
		} else {
			b.WriteString(codon)
		}
	}
	return b.String(), float64(masked) / float64(total)
}

// MaskSequences masks every sequence, dropping the ones whose masked
// fraction exceeds the policy tolerance. Dropped names are returned
// for reporting.
func MaskSequences(seqs bio.Sequences, policy MaskPolicy) (kept bio.Sequences, dropped []string) {
	kept = make(bio.Sequences, 0, len(seqs))
	for _, seq := range seqs {
		masked, fraction := Mask(seq.Sequence, policy.ExemptTerminal)
		if masked == "" || fraction > policy.Tolerance {
			log.Infof("%s: dropped, %.1f%% of codons masked", seq.Name, fraction*100)
			dropped = append(dropped, seq.Name)
			continue
		}
		kept = append(kept, bio.Sequence{Name: seq.Name, Sequence: masked})
	}
	return kept, dropped
}

// ProcessMask masks one FASTA file into output.
func ProcessMask(input, output string, policy MaskPolicy) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	seqs, err := bio.ParseFasta(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %v", input, err)
	}

	kept, dropped := MaskSequences(seqs, policy)
	if len(kept) == 0 {
		return fmt.Errorf("%s: no sequences left after masking", input)
	}
	if len(dropped) > 0 {
		log.Infof("%s: dropped %d of %d sequences", input, len(dropped), len(seqs))
	}
	return writeFasta(output, kept)
}
