// Babappa-phist plots a histogram of raw p-values from an LRT results
// CSV. A roughly uniform histogram with a spike near zero is the
// expected shape; other shapes point at model-fit problems.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func readPValues(fn, column string) (plotter.Values, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no result rows", fn)
	}

	col := -1
	for i, name := range rows[0] {
		if strings.TrimSpace(name) == column {
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no %q column", fn, column)
	}

	vals := make(plotter.Values, 0, len(rows)-1)
	for _, row := range rows[1:] {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad p-value %q: %v", fn, row[col], err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func main() {
	out := flag.String("o", "pvalues.png", "output image")
	bins := flag.Int("bins", 20, "number of histogram bins")
	column := flag.String("column", "p-value", "CSV column to plot")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: babappa-phist [-o out.png] lrt_results.csv")
		os.Exit(1)
	}

	vals, err := readPValues(flag.Arg(0), *column)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := plot.New()
	p.Title.Text = "p-value distribution"
	p.X.Label.Text = *column
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(vals, *bins)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%d p-values plotted to %s\n", len(vals), *out)
}
