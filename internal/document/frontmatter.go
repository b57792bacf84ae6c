package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the subset of a document's YAML frontmatter block this
// system cares about.
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

const frontmatterDelim = "---"

// SplitFrontmatter finds a leading "---\n...\n---\n" YAML block and returns
// the parsed frontmatter plus the remaining content. If there is no
// frontmatter block, it returns a zero Frontmatter and the content
// unchanged.
func SplitFrontmatter(content []byte) (Frontmatter, []byte, error) {
	text := string(content)
	if !strings.HasPrefix(text, frontmatterDelim) {
		return Frontmatter{}, content, nil
	}
	rest := text[len(frontmatterDelim):]
	if !strings.HasPrefix(rest, "\n") && rest != "" {
		return Frontmatter{}, content, nil
	}
	rest = strings.TrimPrefix(rest, "\n")

	end := findClosingDelim(rest)
	if end < 0 {
		return Frontmatter{}, content, nil
	}

	block := rest[:end]
	remainder := rest[end+len(frontmatterDelim):]
	remainder = strings.TrimPrefix(remainder, "\n")

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return Frontmatter{}, content, err
	}
	return fm, []byte(remainder), nil
}

// findClosingDelim returns the byte offset of a line consisting solely of
// "---" following the opening delimiter, or -1 if not found.
func findClosingDelim(text string) int {
	lines := strings.Split(text, "\n")
	offset := 0
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == frontmatterDelim {
			return offset
		}
		offset += len(line)
		if i < len(lines)-1 {
			offset++ // the newline split removed
		}
	}
	return -1
}
