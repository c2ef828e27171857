package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SafeName replaces characters unsuitable for file names with
// underscores.
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '.', r == '-':
			return r
		}
		return '_'
	}, name)
}

// Foreground is one per-leaf labeling of the input tree.
type Foreground struct {
	// Leaf is the name of the leaf marked as foreground.
	Leaf string
	// Tree is a copy of the input with only that leaf in class 1.
	Tree *Tree
}

// Foregrounds generates one tree per named leaf, each with only that
// leaf carrying the "#1" foreground mark. Leaves without a name are
// skipped. Existing class marks are cleared.
func Foregrounds(t *Tree) []Foreground {
	var fgs []Foreground
	for i, leaf := range t.Leaves() {
		if leaf.Name == "" {
			continue
		}
		cp := t.Copy()
		cp.Node.walk(func(node *Node) { node.Class = 0 })
		cp.Leaves()[i].Class = 1
		fgs = append(fgs, Foreground{Leaf: leaf.Name, Tree: cp})
	}
	return fgs
}

// WriteForegrounds writes one {safe_leaf_name}.treefile per leaf under
// outDir. It returns the written file paths.
func WriteForegrounds(t *Tree, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, fg := range Foregrounds(t) {
		fn := filepath.Join(outDir, SafeName(fg.Leaf)+".treefile")
		if err := os.WriteFile(fn, []byte(fg.Tree.String()+"\n"), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %v", fn, err)
		}
		written = append(written, fn)
	}
	return written, nil
}
