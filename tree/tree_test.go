package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const newick = "((homo:0.1,pan:0.2)90:0.05,gorilla:0.3);"

func TestParseString(t *testing.T) {
	tr, err := Parse(strings.NewReader(newick))
	if err != nil {
		t.Fatal(err)
	}
	leaves := tr.Leaves()
	if len(leaves) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(leaves))
	}
	names := []string{"homo", "pan", "gorilla"}
	for i, leaf := range leaves {
		if leaf.Name != names[i] {
			t.Errorf("leaf %d: expected %s, got %s", i, names[i], leaf.Name)
		}
	}

	if s := tr.String(); s != "((homo:0.1,pan:0.2)90:0.05,gorilla:0.3);" {
		t.Errorf("round trip mismatch: %s", s)
	}
}

func TestParseClass(t *testing.T) {
	tr, err := Parse(strings.NewReader("(a#1:0.1,b:0.2);"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Leaves()[0].Class != 1 {
		t.Error("class mark not parsed")
	}
	if s := tr.String(); s != "(a#1:0.1,b:0.2);" {
		t.Errorf("class mark lost: %s", s)
	}
}

func TestParseNoLengths(t *testing.T) {
	tr, err := Parse(strings.NewReader("(a,(b,c));"))
	if err != nil {
		t.Fatal(err)
	}
	if s := tr.String(); s != "(a,(b,c));" {
		t.Errorf("expected no invented branch lengths: %s", s)
	}
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{"(a,b));", "a,b;", "(a:x,b);"} {
		if _, err := Parse(strings.NewReader(bad)); err == nil {
			t.Errorf("expected parse error for %q", bad)
		}
	}
}

func TestForegrounds(t *testing.T) {
	tr, err := Parse(strings.NewReader(newick))
	if err != nil {
		t.Fatal(err)
	}
	fgs := Foregrounds(tr)
	if len(fgs) != 3 {
		t.Fatalf("expected 3 foreground trees, got %d", len(fgs))
	}

	for _, fg := range fgs {
		marked := 0
		for _, leaf := range fg.Tree.Leaves() {
			if leaf.Class == 1 {
				marked++
				if leaf.Name != fg.Leaf {
					t.Errorf("wrong leaf marked: %s != %s", leaf.Name, fg.Leaf)
				}
			}
		}
		if marked != 1 {
			t.Errorf("%s: expected exactly 1 marked leaf, got %d", fg.Leaf, marked)
		}
	}

	// input tree is untouched
	for _, leaf := range tr.Leaves() {
		if leaf.Class != 0 {
			t.Error("input tree modified")
		}
	}

	if s := fgs[1].Tree.String(); !strings.Contains(s, "pan#1:0.2") {
		t.Errorf("expected pan#1 mark in %s", s)
	}
}

func TestWriteForegrounds(t *testing.T) {
	tr, err := Parse(strings.NewReader("(homo/sapiens:0.1,pan:0.2);"))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	written, err := WriteForegrounds(tr, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 files, got %v", written)
	}

	if _, err := os.Stat(filepath.Join(dir, "homo_sapiens.treefile")); err != nil {
		t.Errorf("sanitized tree file missing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pan.treefile"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "pan#1:0.2") {
		t.Errorf("foreground mark missing: %s", data)
	}
}

func TestSafeName(t *testing.T) {
	if s := SafeName("homo/sapiens v2"); s != "homo_sapiens_v2" {
		t.Errorf("got %q", s)
	}
	if s := SafeName("pan_troglodytes.1"); s != "pan_troglodytes.1" {
		t.Errorf("got %q", s)
	}
}
