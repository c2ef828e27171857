package lrt

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ResultsFile is the name of the per-batch corrected results CSV.
const ResultsFile = "lrt_results.csv"

var resultsHeader = []string{
	"Null Model",
	"Alternative Model",
	"LRT Statistic",
	"df",
	"p-value",
	"BH-corrected p-value",
	"Significant (FDR < 0.05)",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteResults writes corrected test results as CSV.
func WriteResults(wr io.Writer, corrected []Corrected) error {
	w := csv.NewWriter(wr)
	if err := w.Write(resultsHeader); err != nil {
		return err
	}
	for _, c := range corrected {
		flag := "No"
		if c.Significant {
			flag = "Yes"
		}
		row := []string{
			c.Null,
			c.Alt,
			formatFloat(c.Stat),
			formatFloat(c.Df),
			formatFloat(c.P),
			formatFloat(c.PAdj),
			flag,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteResultsFile writes corrected test results to a CSV file.
func WriteResultsFile(fn string, corrected []Corrected) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := WriteResults(f, corrected); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MergeSource is one directory of per-batch results to merge, with the
// analysis-type label to attach to its rows.
type MergeSource struct {
	Dir   string
	Label string
}

// Merge collects lrt_results.csv files found one level below each
// source directory and concatenates them into a single CSV with added
// Analysis_Type and Source_File columns. Missing directories and
// unreadable files are skipped with a log entry. It returns the number
// of merged rows.
func Merge(wr io.Writer, sources []MergeSource) (int, error) {
	w := csv.NewWriter(wr)
	header := append(append([]string{}, resultsHeader...), "Analysis_Type", "Source_File")
	if err := w.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	for _, src := range sources {
		matches, err := filepath.Glob(filepath.Join(src.Dir, "*", ResultsFile))
		if err != nil {
			return rows, err
		}
		for _, fn := range matches {
			n, err := appendResults(w, fn, src.Label)
			if err != nil {
				log.Errorf("skipping %s: %v", fn, err)
				continue
			}
			rows += n
		}
	}

	w.Flush()
	return rows, w.Error()
}

func appendResults(w *csv.Writer, fn, label string) (int, error) {
	f, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("empty results file")
	}

	base := filepath.Base(fn)
	n := 0
	for _, row := range rows[1:] {
		if err := w.Write(append(row, label, base)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
