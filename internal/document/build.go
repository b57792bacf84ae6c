package document

import (
	"path/filepath"
	"strings"

	"github.com/cortesi/ra/pkg/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// HeadingEvent is one heading discovered in a document: its level, its
// normalized text (including inline code spans), and the byte range of the
// line the heading sits on (not including the trailing newline).
type HeadingEvent struct {
	Level     int
	Text      string
	LineStart int
	LineEnd   int
}

// ExtractHeadings walks a goldmark AST of content and returns every heading
// event in document order.
func ExtractHeadings(content []byte) []HeadingEvent {
	doc := goldmark.DefaultParser().Parse(text.NewReader(content))

	var headings []HeadingEvent
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		pos := headingPosition(h, content)
		lineStart, lineEnd := lineBounds(content, pos)
		headings = append(headings, HeadingEvent{
			Level:     h.Level,
			Text:      headingText(h, content),
			LineStart: lineStart,
			LineEnd:   lineEnd,
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// headingPosition finds a byte offset inside the heading's source line,
// using the block's recorded lines, falling back to the first available
// inline text segment.
func headingPosition(h *ast.Heading, content []byte) int {
	if lines := h.Lines(); lines.Len() > 0 {
		return lines.At(0).Start
	}
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
	}
	return 0
}

// lineBounds returns the start and end (exclusive of the newline) of the
// line containing byte offset pos.
func lineBounds(content []byte, pos int) (start, end int) {
	start = pos
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end = pos
	for end < len(content) && content[end] != '\n' {
		end++
	}
	return start, end
}

// headingText concatenates the text of a heading's inline children,
// including the contents of inline code spans.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c)
	}
	return b.String()
}

// headingSpan holds a heading event plus its computed content span.
type headingSpan struct {
	HeadingEvent
	spanStart int
	spanEnd   int
}

// calculateSpans assigns each heading's content span: starting after its
// line's trailing newline, ending at the next heading of depth <= its own
// (or end of content).
func calculateSpans(content []byte, headings []HeadingEvent) []headingSpan {
	spans := make([]headingSpan, len(headings))
	for i, h := range headings {
		start := h.LineEnd
		if start < len(content) && content[start] == '\n' {
			start++
		}
		end := len(content)
		for j := i + 1; j < len(headings); j++ {
			if headings[j].Level <= h.Level {
				end = headings[j].LineStart
				break
			}
		}
		spans[i] = headingSpan{HeadingEvent: h, spanStart: start, spanEnd: end}
	}
	return spans
}

// Builder constructs chunk trees for documents belonging to one named tree.
type Builder struct {
	Tree string
}

// NewBuilder returns a Builder scoped to the given tree name.
func NewBuilder(tree string) *Builder {
	return &Builder{Tree: tree}
}

// Build parses content (the full bytes of a source file, frontmatter
// included) into a chunk tree and its flattened, index-facing chunks.
// Returns a nil tree and nil chunks, no error, for an empty or
// whitespace-only document.
func (b *Builder) Build(path string, content []byte) (*Tree, []types.Chunk, error) {
	fm, body, err := SplitFrontmatter(content)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil, nil
	}

	contentHash := types.ComputeContentHash(content)
	docID := MakeDocID(b.Tree, path)

	var headings []HeadingEvent
	if isMarkdown(path) {
		headings = ExtractHeadings(body)
	}

	title := resolveTitle(fm.Title, headings, path)
	root := &Node{
		ID:        docID,
		DocID:     docID,
		Depth:     0,
		Title:     title,
		ByteStart: 0,
		ByteEnd:   len(body),
		Kind:      types.KindDocument,
	}

	t := &Tree{Root: root, Content: body}

	if len(headings) == 0 {
		t.AssignPositions()
		t.AssignSiblingCounts()
		chunks := t.ExtractChunks(b.Tree, path, title, fm.Tags, contentHash)
		return t, chunks, nil
	}

	t.FirstHeadingStart = headings[0].LineStart
	t.HasFirstHeading = true

	spans := calculateSpans(body, headings)
	slugifier := NewSlugifier()

	type stackEntry struct {
		node  *Node
		level int
	}
	stack := []stackEntry{{root, 0}}

	for _, sp := range spans {
		if sp.spanStart >= sp.spanEnd {
			continue // empty span: discard
		}
		for len(stack) > 1 && stack[len(stack)-1].level >= sp.Level {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, top.node)
		}
		parent := stack[len(stack)-1].node
		slug := slugifier.Slugify(sp.Text)
		node := &Node{
			ID:               MakeChunkID(b.Tree, path, slug),
			DocID:            docID,
			ParentID:         parent.ID,
			Depth:            sp.Level,
			Title:            sp.Text,
			Slug:             slug,
			HeadingLineStart: sp.LineStart,
			ByteStart:        sp.spanStart,
			ByteEnd:          sp.spanEnd,
			Kind:             types.KindHeading,
		}
		stack = append(stack, stackEntry{node, sp.Level})
	}
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, top.node)
	}

	t.AssignPositions()
	t.AssignSiblingCounts()
	chunks := t.ExtractChunks(b.Tree, path, title, fm.Tags, contentHash)
	return t, chunks, nil
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func resolveTitle(frontmatterTitle string, headings []HeadingEvent, path string) string {
	if frontmatterTitle != "" {
		return frontmatterTitle
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
