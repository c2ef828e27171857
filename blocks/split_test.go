package blocks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/babappa/babappa/bio"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	// 30 nt alignment, 10 codon sites
	fasta := writeFile(t, dir, "homo.aligned.fasta",
		">s1\nATGAAACCCGGGTTTAAACCCGGGTTTAAA\n>s2\nATGAAACCCGGGTTTAAACCCGGGTTTCCC\n")
	json := writeFile(t, dir, "homo.gard.json", `{
  "input": {"number of sites": 10},
  "breakpointData": {"0": {"bps": [[1, 4], [5, 10]]}}
}`)
	outRoot := filepath.Join(dir, "recombination_blocks")

	written, err := Split(fasta, json, outRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 block files, got %v", written)
	}

	want := filepath.Join(outRoot, "homo", "homo.aligned.fasta.gard_block1_1-4.fas")
	if written[0] != want {
		t.Errorf("expected %s, got %s", want, written[0])
	}

	f, err := os.Open(written[0])
	if err != nil {
		t.Fatal(err)
	}
	seqs, err := bio.ParseFasta(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	// native (1,4) at scale 3 -> nt (1,12)
	if seqs[0].Sequence != "ATGAAACCCGGG" {
		t.Errorf("wrong block 1 content: %q", seqs[0].Sequence)
	}
	if seqs[0].Name != "s1" || seqs[1].Name != "s2" {
		t.Error("sequence names not preserved")
	}

	logData, err := os.ReadFile(filepath.Join(outRoot, "homo", SplitLog))
	if err != nil {
		t.Fatal(err)
	}
	logText := string(logData)
	for _, want := range []string{
		"Alignment length: 30 nt",
		"Scale factor: 3",
		"Blocks (native): 1-4, 5-10",
		"Blocks (nt): 1-12, 13-30",
	} {
		if !strings.Contains(logText, want) {
			t.Errorf("log missing %q:\n%s", want, logText)
		}
	}
}

func TestSplitSkipsShortBlocks(t *testing.T) {
	dir := t.TempDir()
	fasta := writeFile(t, dir, "pan.fasta",
		">s1\nATGAAACCCGGG\n>s2\nATGAAACCCTTT\n")
	// scale 1: (5,6) trims to an inverted/short interval, (1,12) survives
	json := writeFile(t, dir, "pan.json", `{
  "input": {"number of sites": 12},
  "breakpointData": {"0": {"bps": [[1, 12], [11, 12]]}}
}`)
	outRoot := filepath.Join(dir, "out")

	written, err := Split(fasta, json, outRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 block file, got %v", written)
	}

	logData, err := os.ReadFile(filepath.Join(outRoot, "pan", SplitLog))
	if err != nil {
		t.Fatal(err)
	}
	// native (11,12) maps to nt (11,12), no full codon inside
	if !strings.Contains(string(logData), "Skipped block 2: too short after trimming") {
		t.Errorf("log missing skip notice:\n%s", logData)
	}
}

func TestSplitMalformedAlignment(t *testing.T) {
	dir := t.TempDir()
	fasta := writeFile(t, dir, "bad.fasta", ">s1\nATGAAA\n>s2\nATG\n")
	json := writeFile(t, dir, "bad.json", `{
  "input": {"number of sites": 2},
  "breakpointData": {"0": {"bps": [[1, 2]]}}
}`)
	if _, err := Split(fasta, json, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error for inconsistent sequence lengths")
	}
}
