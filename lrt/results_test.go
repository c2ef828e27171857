package lrt

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteResults(t *testing.T) {
	corrected := []Corrected{
		{
			Result:      Result{Null: "geneX_BS_NULL", Alt: "geneX_BS", Stat: 6, Df: 1, P: 0.0143},
			PAdj:        0.0286,
			Significant: true,
		},
		{
			Result: Result{Null: "M0", Alt: "geneY_B", Stat: 0.5, Df: 1, P: 0.4795},
			PAdj:   0.4795,
		},
	}

	var sb strings.Builder
	if err := WriteResults(&sb, corrected); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Null Model" || rows[0][6] != "Significant (FDR < 0.05)" {
		t.Errorf("wrong header: %v", rows[0])
	}
	if rows[1][0] != "geneX_BS_NULL" || rows[1][6] != "Yes" {
		t.Errorf("wrong first row: %v", rows[1])
	}
	if rows[2][6] != "No" {
		t.Errorf("wrong significance flag: %v", rows[2])
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	siteDir := filepath.Join(dir, "sitemodel")
	bsDir := filepath.Join(dir, "branchsite")

	write := func(sub string, corrected []Corrected) {
		t.Helper()
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatal(err)
		}
		if err := WriteResultsFile(filepath.Join(sub, ResultsFile), corrected); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(siteDir, "homo"), []Corrected{
		{Result: Result{Null: "Model 0", Alt: "Model 1", Stat: 4, Df: 1, P: 0.0455}, PAdj: 0.0455},
	})
	write(filepath.Join(bsDir, "homo"), []Corrected{
		{Result: Result{Null: "geneX_BS_NULL", Alt: "geneX_BS", Stat: 6, Df: 1, P: 0.0143}, PAdj: 0.0143, Significant: true},
		{Result: Result{Null: "geneY_BS_NULL", Alt: "geneY_BS", Stat: 1, Df: 1, P: 0.3173}, PAdj: 0.3173},
	})

	var sb strings.Builder
	n, err := Merge(&sb, []MergeSource{
		{Dir: siteDir, Label: "SiteModel"},
		{Dir: bsDir, Label: "BranchSite"},
		{Dir: filepath.Join(dir, "missing"), Label: "Block"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 merged rows, got %d", n)
	}

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][7] != "Analysis_Type" || rows[0][8] != "Source_File" {
		t.Errorf("wrong merged header: %v", rows[0])
	}
	if rows[1][7] != "SiteModel" || rows[2][7] != "BranchSite" {
		t.Errorf("wrong labels: %v / %v", rows[1], rows[2])
	}
}
