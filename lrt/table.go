// Package lrt builds likelihood-ratio tests from codon-model fit
// tables and corrects them for multiple testing.
package lrt

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("lrt")

// Record is one codon-model fit: an analysis name with its maximum
// log-likelihood and, when reported, the parameter count.
type Record struct {
	Analysis string
	LnL      float64
	NP       float64
	HasNP    bool
}

// Table is a batch of fit records keyed by analysis name. Row order is
// preserved; for duplicate names the first row wins.
type Table struct {
	Rows  []Record
	index map[string]int
}

// Get returns the record for an analysis name.
func (t *Table) Get(name string) (Record, bool) {
	i, ok := t.index[name]
	if !ok {
		return Record{}, false
	}
	return t.Rows[i], true
}

// normalizeName strips the decoration some producers add to model
// labels ("Model 0:" vs "Model 0").
func normalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ":")
}

// ReadTable parses a per-analysis results CSV. The analysis column may
// be titled either Analysis or Model; lnL is required and np is
// optional.
func ReadTable(rd io.Reader) (*Table, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}

	nameCol, lnlCol, npCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Analysis", "Model":
			nameCol = i
		case "lnL":
			lnlCol = i
		case "np":
			npCol = i
		}
	}
	if nameCol < 0 || lnlCol < 0 {
		return nil, fmt.Errorf("missing required columns (Analysis/Model, lnL), got %v", header)
	}

	t := &Table{index: make(map[string]int)}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := Record{Analysis: normalizeName(row[nameCol])}
		rec.LnL, err = strconv.ParseFloat(strings.TrimSpace(row[lnlCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %q: bad lnL: %v", rec.Analysis, err)
		}
		if npCol >= 0 && npCol < len(row) && strings.TrimSpace(row[npCol]) != "" {
			rec.NP, err = strconv.ParseFloat(strings.TrimSpace(row[npCol]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %q: bad np: %v", rec.Analysis, err)
			}
			rec.HasNP = true
		}

		if _, dup := t.index[rec.Analysis]; !dup {
			t.index[rec.Analysis] = len(t.Rows)
			t.Rows = append(t.Rows, rec)
		}
	}

	return t, nil
}

// ReadTableFile parses a per-analysis results CSV from a file.
func ReadTableFile(fn string) (*Table, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", fn, err)
	}
	return t, nil
}
