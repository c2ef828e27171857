// Package tree parses Newick phylogenetic trees and generates
// per-branch foreground labelings for branch and branch-site models.
package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parser modes
type mode int

const (
	normal mode = iota
	length
	class
)

// Node is a node of a phylogenetic tree. Class 1 marks a foreground
// branch (the "#1" Newick extension used by codon-model software).
type Node struct {
	Name         string
	BranchLength float64
	HasLength    bool
	Class        int
	Parent       *Node
	children     []*Node
}

// Tree is a rooted phylogenetic tree.
type Tree struct {
	*Node
}

// AddChild appends a child node.
func (node *Node) AddChild(sub *Node) {
	sub.Parent = node
	node.children = append(node.children, sub)
}

// ChildNodes returns the direct children.
func (node *Node) ChildNodes() []*Node {
	return node.children
}

// IsTerminal returns true for a leaf node.
func (node *Node) IsTerminal() bool {
	return len(node.children) == 0
}

func (node *Node) write(sb *strings.Builder) {
	if !node.IsTerminal() {
		sb.WriteByte('(')
		for i, child := range node.children {
			if i > 0 {
				sb.WriteByte(',')
			}
			child.write(sb)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(node.Name)
	if node.Class != 0 {
		fmt.Fprintf(sb, "#%d", node.Class)
	}
	if node.HasLength {
		fmt.Fprintf(sb, ":%s", strconv.FormatFloat(node.BranchLength, 'g', -1, 64))
	}
}

// String returns the tree in Newick format, with "#class" marks on
// nodes of a non-zero class.
func (tree *Tree) String() string {
	var sb strings.Builder
	tree.Node.write(&sb)
	sb.WriteByte(';')
	return sb.String()
}

// Copy creates an independent copy of the tree.
func (tree *Tree) Copy() *Tree {
	return &Tree{Node: tree.Node.copy(nil)}
}

func (node *Node) copy(parent *Node) *Node {
	n := &Node{
		Name:         node.Name,
		BranchLength: node.BranchLength,
		HasLength:    node.HasLength,
		Class:        node.Class,
		Parent:       parent,
	}
	for _, child := range node.children {
		n.children = append(n.children, child.copy(n))
	}
	return n
}

// Leaves returns the terminal nodes in tree order.
func (tree *Tree) Leaves() (leaves []*Node) {
	tree.Node.walk(func(node *Node) {
		if node.IsTerminal() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

func (node *Node) walk(visit func(*Node)) {
	visit(node)
	for _, child := range node.children {
		child.walk(visit)
	}
}

func isSpecial(c rune) bool {
	switch c {
	case '(', ')', ':', '#', ';', ',':
		return true
	}
	return false
}

// newickSplit is a bufio.SplitFunc tokenizing Newick text into special
// characters and labels.
func newickSplit(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if isSpecial(r) {
			return start + width, data[start : start+width], nil
		}
		if !unicode.IsSpace(r) {
			break
		}
	}
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		if unicode.IsSpace(r) || isSpecial(r) {
			return i, data[start:i], nil
		}
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return 0, nil, nil
}

// Parse reads a Newick tree, accepting branch lengths and "#class"
// marks.
func Parse(rd io.Reader) (*Tree, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Split(newickSplit)

	node := &Node{}
	tree := &Tree{Node: node}
	m := normal

	for scanner.Scan() {
		text := scanner.Text()
		switch text {
		case "(":
			sub := &Node{}
			node.AddChild(sub)
			node = sub
		case ",":
			if node.Parent == nil {
				return nil, errors.New("top level comma mismatch")
			}
			sub := &Node{}
			node.Parent.AddChild(sub)
			node = sub
		case ")":
			if node.Parent == nil {
				return nil, errors.New("brackets mismatch")
			}
			node = node.Parent
		case "#":
			m = class
		case ":":
			m = length
		case ";":
			if node != tree.Node {
				return nil, errors.New("unexpected end of tree")
			}
			return tree, scanner.Err()
		default:
			switch m {
			case length:
				l, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return nil, fmt.Errorf("bad branch length %q: %v", text, err)
				}
				node.BranchLength = l
				node.HasLength = true
				m = normal
			case class:
				cl, err := strconv.ParseInt(text, 0, 0)
				if err != nil {
					return nil, fmt.Errorf("bad class %q: %v", text, err)
				}
				node.Class = int(cl)
				m = normal
			default:
				node.Name = text
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}
