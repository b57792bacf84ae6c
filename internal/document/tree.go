package document

import (
	"strings"

	"github.com/cortesi/ra/pkg/types"
)

// Tree is a built chunk tree for one document, plus the source content
// needed to reconstruct node bodies on demand.
type Tree struct {
	Root              *Node
	Content           []byte
	FirstHeadingStart int
	HasFirstHeading   bool
}

// AssignPositions numbers every node in pre-order starting at 0.
func (t *Tree) AssignPositions() {
	pos := 0
	t.Root.IterPreorder(func(n *Node) {
		n.Position = pos
		pos++
	})
}

// AssignSiblingCounts sets every node's SiblingCount to the number of
// children its parent has (including itself). The root always has 1.
func (t *Tree) AssignSiblingCounts() {
	t.Root.SiblingCount = 1
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			c.SiblingCount = len(n.Children)
			walk(c)
		}
	}
	walk(t.Root)
}

// NodeCount returns the total number of nodes in the tree.
func (t *Tree) NodeCount() int {
	count := 0
	t.Root.IterPreorder(func(*Node) { count++ })
	return count
}

// GetNode finds a node by id via a full tree walk. Acceptable here: trees
// are per-document and small.
func (t *Tree) GetNode(id string) *Node {
	var found *Node
	t.Root.IterPreorder(func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}

// Body reconstructs a node's own text, excluding child spans and heading
// lines, by slicing Content.
//
// A leaf's body is its full span, except the document node when the
// document has a first heading: its body ends at that heading's line start
// regardless of whether that particular heading survived span-collapse
// discarding. A node with children has its body end at its first child's
// heading line start.
func (t *Tree) Body(n *Node) string {
	if len(n.Children) == 0 {
		if n.Kind == types.KindDocument && t.HasFirstHeading {
			return string(t.Content[n.ByteStart:t.FirstHeadingStart])
		}
		return string(t.Content[n.ByteStart:n.ByteEnd])
	}
	firstChild := n.Children[0]
	return string(t.Content[n.ByteStart:firstChild.HeadingLineStart])
}

// HasBody reports whether a node's reconstructed body is non-blank.
func (t *Tree) HasBody(n *Node) bool {
	return strings.TrimSpace(t.Body(n)) != ""
}

// BuildBreadcrumb constructs the display breadcrumb for n: the document
// title, then each ancestor's title (skipping the document node, and
// skipping an ancestor that is an h1 whose title equals the document
// title), then n's own title (subject to the same h1/doc-title elision),
// joined with " › ".
func BuildBreadcrumb(n *Node, ancestors []*Node, docTitle string) string {
	parts := []string{docTitle}
	for _, a := range ancestors {
		if a.Kind == types.KindDocument {
			continue
		}
		if a.Depth == 1 && a.Title == docTitle {
			continue
		}
		parts = append(parts, a.Title)
	}
	if n.Kind != types.KindDocument && !(n.Depth == 1 && n.Title == docTitle) {
		parts = append(parts, n.Title)
	}
	return strings.Join(parts, " › ")
}

// ExtractChunks flattens the tree into index-facing records, computing each
// node's breadcrumb along the way.
func (t *Tree) ExtractChunks(tree, path string, docTitle string, tags []string, contentHash [32]byte) []types.Chunk {
	var chunks []types.Chunk
	var ancestors []*Node

	var walk func(n *Node)
	walk = func(n *Node) {
		breadcrumb := BuildBreadcrumb(n, ancestors, docTitle)
		c := types.Chunk{
			ID:           n.ID,
			DocID:        n.DocID,
			ParentID:     n.ParentID,
			Tree:         tree,
			Path:         path,
			Kind:         n.Kind,
			Depth:        n.Depth,
			Position:     n.Position,
			Title:        n.Title,
			Slug:         n.Slug,
			ByteStart:    n.ByteStart,
			ByteEnd:      n.ByteEnd,
			SiblingCount: n.SiblingCount,
			Breadcrumb:   breadcrumb,
			ContentHash:  contentHash,
		}
		if n.Kind == types.KindDocument {
			c.Tags = tags
		}
		chunks = append(chunks, c)

		ancestors = append(ancestors, n)
		for _, child := range n.Children {
			walk(child)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	walk(t.Root)
	return chunks
}
