package coref

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTreeSyntax is returned by ParseTree for unbalanced or empty input.
var ErrTreeSyntax = errors.New("coref: malformed bracketed tree")

// Tree is a constituency parse node. Leaves carry the token text in Label
// and cover exactly one token; internal nodes cover the half-open token
// range [Start, End) of their leaves.
type Tree struct {
	Label    string
	Children []*Tree
	Start    int
	End      int

	parent *Tree
}

// IsLeaf reports whether t is a token.
func (t *Tree) IsLeaf() bool { return len(t.Children) == 0 }

// IsPreTerminal reports whether t is a POS node over a single token.
func (t *Tree) IsPreTerminal() bool {
	return len(t.Children) == 1 && t.Children[0].IsLeaf()
}

// Parent returns the enclosing node, or nil at the root.
func (t *Tree) Parent() *Tree { return t.parent }

// IsClause reports whether the node is a clause-level constituent.
func (t *Tree) IsClause() bool {
	return strings.HasPrefix(t.Label, "S") || t.Label == "ROOT" || t.Label == "TOP"
}

// IsNounPhrase reports whether the node is an NP.
func (t *Tree) IsNounPhrase() bool { return strings.HasPrefix(t.Label, "NP") }

// Dominates reports whether other lies in the subtree rooted at t
// (a node dominates itself).
func (t *Tree) Dominates(other *Tree) bool {
	for n := other; n != nil; n = n.parent {
		if n == t {
			return true
		}
	}
	return false
}

// Covering returns the highest non-leaf node spanning exactly [start, end),
// or nil when no constituent matches the span.
func (t *Tree) Covering(start, end int) *Tree {
	if t == nil || t.Start > start || t.End < end {
		return nil
	}
	if t.Start == start && t.End == end && !t.IsLeaf() {
		return t
	}
	for _, c := range t.Children {
		if n := c.Covering(start, end); n != nil {
			return n
		}
	}
	return nil
}

// Walk visits t and its descendants in pre-order.
func (t *Tree) Walk(fn func(*Tree)) {
	if t == nil {
		return
	}
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// Link sets parent pointers and recomputes spans so leaves are numbered
// left to right from zero. Trees built by hand must be linked before use.
func (t *Tree) Link() {
	next := 0
	t.link(nil, &next)
}

func (t *Tree) link(parent *Tree, next *int) {
	t.parent = parent
	if t.IsLeaf() {
		t.Start = *next
		t.End = *next + 1
		*next++
		return
	}
	t.Start = *next
	for _, c := range t.Children {
		c.link(t, next)
	}
	t.End = *next
}

// String renders the tree in Penn bracket notation.
func (t *Tree) String() string {
	if t.IsLeaf() {
		return t.Label
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(t.Label)
	for _, c := range t.Children {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}

// ParseTree reads a Penn-style bracketed tree such as
// "(ROOT (S (NP (NNP John)) (VP (VBD left))))" and links it.
func ParseTree(s string) (*Tree, error) {
	toks := tokenizeBrackets(s)
	if len(toks) == 0 {
		return nil, ErrTreeSyntax
	}
	pos := 0
	root, err := parseNode(toks, &pos)
	if err != nil {
		return nil, err
	}
	if pos != len(toks) {
		return nil, fmt.Errorf("%w: trailing input at token %d", ErrTreeSyntax, pos)
	}
	root.Link()
	return root, nil
}

func tokenizeBrackets(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func parseNode(toks []string, pos *int) (*Tree, error) {
	if *pos >= len(toks) {
		return nil, fmt.Errorf("%w: unexpected end", ErrTreeSyntax)
	}
	if toks[*pos] != "(" {
		leaf := &Tree{Label: toks[*pos]}
		*pos++
		return leaf, nil
	}
	*pos++
	node := &Tree{}
	if *pos < len(toks) && toks[*pos] != "(" && toks[*pos] != ")" {
		node.Label = toks[*pos]
		*pos++
	}
	for {
		if *pos >= len(toks) {
			return nil, fmt.Errorf("%w: missing ')'", ErrTreeSyntax)
		}
		if toks[*pos] == ")" {
			*pos++
			break
		}
		child, err := parseNode(toks, pos)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	// "( (S ...))" wraps the real root in an unlabeled node.
	if node.Label == "" && len(node.Children) == 1 {
		return node.Children[0], nil
	}
	if node.Label == "" {
		node.Label = "ROOT"
	}
	return node, nil
}
