// Package bio provides nucleotide sequence and FASTA alignment primitives.
package bio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StopCodons is the set of canonical stop triplets (DNA alphabet,
// capital letters).
var StopCodons = map[string]bool{
	"TAA": true,
	"TAG": true,
	"TGA": true,
}

// IsStopCodon tests if the string is a stop-codon. The comparison is
// case-insensitive and U is treated as T.
func IsStopCodon(codon string) bool {
	codon = strings.Replace(strings.ToUpper(codon), "U", "T", -1)
	return StopCodons[codon]
}

// Sequence stores a nucleotide sequence with its name.
type Sequence struct {
	Name     string
	Sequence string
}

// Sequences stores multiple sequences, e.g. a sequence alignment.
type Sequences []Sequence

// ParseFasta parses FASTA sequences from a reader.
func ParseFasta(rd io.Reader) (seqs Sequences, err error) {
	seqs = make(Sequences, 0, 10)
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			seq := Sequence{Name: strings.TrimSpace(line[1:])}
			seqs = append(seqs, seq)
		} else {
			if len(seqs) == 0 {
				return nil, errors.New("sequence w/o prefix")
			}
			line = strings.ToUpper(strings.Replace(line, " ", "", -1))
			seqs[len(seqs)-1].Sequence += line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return seqs, nil
}

// Length returns the alignment length in nucleotides. An error is
// returned if the alignment is empty or sequence lengths differ.
func (seqs Sequences) Length() (int, error) {
	if len(seqs) == 0 {
		return 0, errors.New("empty alignment")
	}
	l := len(seqs[0].Sequence)
	for _, seq := range seqs {
		if len(seq.Sequence) != l {
			return 0, fmt.Errorf("inconsistent sequence length for %s: %d != %d",
				seq.Name, len(seq.Sequence), l)
		}
	}
	return l, nil
}

// Slice returns a sub-alignment with every sequence cut at
// [start, end), 0-based half-open. Names are preserved.
func (seqs Sequences) Slice(start, end int) Sequences {
	sub := make(Sequences, 0, len(seqs))
	for _, seq := range seqs {
		sub = append(sub, Sequence{
			Name:     seq.Name,
			Sequence: seq.Sequence[start:end],
		})
	}
	return sub
}

// InFrameStop returns the 0-based nucleotide offset of the first
// in-frame stop codon, or -1 if the sequence contains none. All codons
// are checked, including the terminal one.
func InFrameStop(seq string) int {
	for i := 0; i+3 <= len(seq); i += 3 {
		if IsStopCodon(seq[i : i+3]) {
			return i
		}
	}
	return -1
}

// Wrap inputs a string and wraps it so string length is n characters
// or less.
func Wrap(seq string, n int) (s string) {
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		s += seq[i:end] + "\n"
	}
	return
}

// String returns a sequence in FASTA format.
func (seq Sequence) String() (s string) {
	return ">" + seq.Name + "\n" + Wrap(seq.Sequence, 80)
}

// WriteFasta writes sequences to a writer in FASTA format.
func (seqs Sequences) WriteFasta(wr io.Writer) error {
	bw := bufio.NewWriter(wr)
	for _, seq := range seqs {
		if _, err := bw.WriteString(seq.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
