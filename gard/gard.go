// Package gard reads recombination-breakpoint reports produced by the
// GARD screening stage.
package gard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("gard")

// Interval is a 1-based inclusive coordinate range in detector-native
// units (codons for a codon-aware screen, nucleotides otherwise).
type Interval struct {
	Start int
	End   int
}

// partition is one entry of the breakpointData mapping.
type partition struct {
	Bps [][]int `json:"bps"`
}

// report mirrors the subset of the GARD JSON output we consume.
type report struct {
	BreakpointData map[string]partition `json:"breakpointData"`
	Input          struct {
		NSites int `json:"number of sites"`
	} `json:"input"`
}

// Report holds the parsed breakpoint report.
type Report struct {
	// Breakpoints are the native-unit intervals, deduplicated and
	// sorted by (start, end).
	Breakpoints []Interval
	// NSites is the site count reported by the detector.
	NSites int
}

// Parse reads a GARD JSON report.
func Parse(rd io.Reader) (*Report, error) {
	var raw report
	dec := json.NewDecoder(rd)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding report: %v", err)
	}

	seen := make(map[Interval]bool)
	bps := make([]Interval, 0, len(raw.BreakpointData))
	for _, part := range raw.BreakpointData {
		for _, rng := range part.Bps {
			if len(rng) != 2 {
				continue
			}
			iv := Interval{Start: rng[0], End: rng[1]}
			if iv.Start > iv.End || seen[iv] {
				continue
			}
			seen[iv] = true
			bps = append(bps, iv)
		}
	}
	sort.Slice(bps, func(i, j int) bool {
		if bps[i].Start != bps[j].Start {
			return bps[i].Start < bps[j].Start
		}
		return bps[i].End < bps[j].End
	})

	if len(bps) == 0 {
		return nil, fmt.Errorf("no blocks found in breakpointData")
	}

	return &Report{Breakpoints: bps, NSites: raw.Input.NSites}, nil
}

// ParseFile reads a GARD JSON report from a file.
func ParseFile(fn string) (*Report, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ScaleFactor infers the number of nucleotides per detector-native
// coordinate unit (1 for aa/nt screens, 3 for codon screens) from the
// alignment nucleotide length. If the length does not divide evenly by
// the reported site count, the inference fails safe to 1.
func (rep *Report) ScaleFactor(alignmentLen int) int {
	if rep.NSites > 0 && alignmentLen%rep.NSites == 0 {
		return alignmentLen / rep.NSites
	}
	log.Debugf("cannot infer scale factor for length %d and %d sites, using 1",
		alignmentLen, rep.NSites)
	return 1
}
