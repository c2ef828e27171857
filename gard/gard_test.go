package gard

import (
	"strings"
	"testing"
)

const reportJSON = `{
  "input": {"number of sites": 300, "file name": "test.fasta"},
  "breakpointData": {
    "1": {"bps": [[51, 300], [1, 50]]},
    "0": {"bps": [[1, 50], [300, 51], [7]]}
  }
}`

func TestParse(t *testing.T) {
	rep, err := Parse(strings.NewReader(reportJSON))
	if err != nil {
		t.Fatal(err)
	}
	if rep.NSites != 300 {
		t.Errorf("expected 300 sites, got %d", rep.NSites)
	}
	// [300,51] is inverted, [7] is malformed, [1,50] is duplicated
	expected := []Interval{{1, 50}, {51, 300}}
	if len(rep.Breakpoints) != len(expected) {
		t.Fatalf("expected %d breakpoints, got %v", len(expected), rep.Breakpoints)
	}
	for i, iv := range expected {
		if rep.Breakpoints[i] != iv {
			t.Errorf("breakpoint %d: expected %v, got %v", i, iv, rep.Breakpoints[i])
		}
	}
}

func TestParseSorted(t *testing.T) {
	rep, err := Parse(strings.NewReader(`{
  "input": {"number of sites": 10},
  "breakpointData": {
    "0": {"bps": [[5, 10], [5, 7], [1, 4]]}
  }
}`))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Interval{{1, 4}, {5, 7}, {5, 10}}
	for i, iv := range expected {
		if rep.Breakpoints[i] != iv {
			t.Errorf("breakpoint %d: expected %v, got %v", i, iv, rep.Breakpoints[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{"breakpointData": {}}`)); err == nil {
		t.Error("expected error for report without blocks")
	}
	if _, err := Parse(strings.NewReader(`not json`)); err == nil {
		t.Error("expected error for malformed report")
	}
}

func TestScaleFactor(t *testing.T) {
	rep := &Report{NSites: 300}
	if s := rep.ScaleFactor(900); s != 3 {
		t.Errorf("expected scale 3, got %d", s)
	}
	if s := rep.ScaleFactor(300); s != 1 {
		t.Errorf("expected scale 1, got %d", s)
	}
	// not evenly divisible: fail safe to 1
	if s := rep.ScaleFactor(901); s != 1 {
		t.Errorf("expected fail-safe scale 1, got %d", s)
	}
	rep = &Report{NSites: 0}
	if s := rep.ScaleFactor(900); s != 1 {
		t.Errorf("expected scale 1 for zero sites, got %d", s)
	}
}
