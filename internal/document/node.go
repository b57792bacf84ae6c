package document

import "github.com/cortesi/ra/pkg/types"

// Node is an in-memory node of a document's chunk tree. Unlike types.Chunk,
// Node retains HeadingLineStart and Children, needed only during tree
// construction and body reconstruction.
type Node struct {
	ID       string
	DocID    string
	ParentID string

	Depth    int
	Position int

	Title string
	Slug  string

	// HeadingLineStart is the byte offset where this node's heading line
	// starts. Zero for the document node. Used to compute a parent's body
	// boundary (the preamble before its first child).
	HeadingLineStart int
	ByteStart        int
	ByteEnd          int

	SiblingCount int
	Kind         types.NodeKind

	Children []*Node
}

// MakeDocID builds "{tree}:{path}".
func MakeDocID(tree, path string) string {
	return tree + ":" + path
}

// MakeChunkID builds "{tree}:{path}#{slug}", or the bare doc id if slug is
// empty.
func MakeChunkID(tree, path, slug string) string {
	if slug == "" {
		return MakeDocID(tree, path)
	}
	return MakeDocID(tree, path) + "#" + slug
}

// IterPreorder calls fn for this node and every descendant, depth-first,
// left to right.
func (n *Node) IterPreorder(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.IterPreorder(fn)
	}
}

// IsLeaf reports whether this node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}
