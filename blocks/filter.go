package blocks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/babappa/babappa/bio"
)

// CheckResult records the validation outcome for one block file.
type CheckResult struct {
	Path   string
	Valid  bool
	Reason string
}

// Check validates one block alignment: it must be non-empty, have a
// triplet length and carry no in-frame stop codon in any sequence.
func Check(seqs bio.Sequences) (reason string, ok bool) {
	if len(seqs) == 0 {
		return "empty alignment", false
	}
	length, err := seqs.Length()
	if err != nil {
		return err.Error(), false
	}
	if length%3 != 0 {
		return fmt.Sprintf("length %d not divisible by 3", length), false
	}
	for _, seq := range seqs {
		if off := bio.InFrameStop(seq.Sequence); off >= 0 {
			return fmt.Sprintf("stop codon found in %s", seq.Name), false
		}
	}
	return "valid", true
}

// checkFile parses and validates a single block file. Unreadable or
// partially-written files are reported as invalid rather than failing
// the batch.
func checkFile(fn string) (reason string, ok bool) {
	f, err := os.Open(fn)
	if err != nil {
		return err.Error(), false
	}
	defer f.Close()

	seqs, err := bio.ParseFasta(f)
	if err != nil {
		return err.Error(), false
	}
	return Check(seqs)
}

// Filter walks a directory tree of block FASTA files and moves invalid
// blocks to discardDir, mirroring the per-organism subdirectory
// structure. Valid files stay in place. Errors are isolated per file;
// the returned error covers only directory traversal itself.
func Filter(blocksDir, discardDir string) ([]CheckResult, error) {
	var results []CheckResult

	err := filepath.WalkDir(blocksDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".fas") {
			return nil
		}

		reason, ok := checkFile(path)
		res := CheckResult{Path: path, Valid: ok, Reason: reason}
		if ok {
			log.Infof("keeping %s (%s)", path, reason)
			results = append(results, res)
			return nil
		}

		organism := filepath.Base(filepath.Dir(path))
		destDir := filepath.Join(discardDir, organism)
		if err := os.MkdirAll(destDir, 0755); err != nil {
			log.Errorf("%s: %v", path, err)
			results = append(results, res)
			return nil
		}
		dest := filepath.Join(destDir, d.Name())
		if err := os.Rename(path, dest); err != nil {
			log.Errorf("discarding %s: %v", path, err)
		} else {
			log.Infof("discarded %s -> %s (%s)", path, dest, reason)
		}
		results = append(results, res)
		return nil
	})

	return results, err
}
