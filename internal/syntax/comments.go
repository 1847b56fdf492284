package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// LeadingComment returns the raw documentation comment attached to n: the
// block comment, or run of line comments, ending on the line right above it.
// A comment trailing code on its own line belongs to that code, not to n.
func (f *File) LeadingComment(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	next := n
	for prev := n.PrevSibling(); prev != nil && prev.Type() == KindComment; prev = prev.PrevSibling() {
		if next.StartPoint().Row-prev.EndPoint().Row > 1 {
			break
		}
		if f.trailsCode(prev) {
			break
		}
		text := f.Text(prev)
		if strings.HasPrefix(text, "/*") {
			// A block comment closes the run; line comments above it are
			// unrelated notes.
			if len(parts) > 0 && !strings.HasPrefix(parts[0], "/*") {
				break
			}
			parts = append([]string{text}, parts...)
			break
		}
		parts = append([]string{text}, parts...)
		next = prev
	}
	if len(parts) == 0 {
		return ""
	}
	if strings.HasPrefix(parts[len(parts)-1], "/*") {
		return parts[len(parts)-1]
	}
	return strings.Join(parts, "\n")
}

// TrailingComment returns a comment on the same line right after n, like
// `count: 0, // number of clicks`.
func (f *File) TrailingComment(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	next := n.NextSibling()
	if next != nil && !next.IsNamed() && next.Type() == "," {
		next = next.NextSibling()
	}
	if next == nil || next.Type() != KindComment {
		return ""
	}
	if next.StartPoint().Row != n.EndPoint().Row {
		return ""
	}
	return f.Text(next)
}

// trailsCode reports whether comment c shares its line with code before it.
func (f *File) trailsCode(c *sitter.Node) bool {
	prev := c.PrevSibling()
	if prev == nil {
		return false
	}
	return prev.Type() != KindComment && prev.EndPoint().Row == c.StartPoint().Row
}

// FileComment returns the first comment of the file when it stands alone,
// separated from the first statement by a blank line. Script setup blocks
// use it as the component description.
func (f *File) FileComment() string {
	if f.Root == nil || f.Root.ChildCount() == 0 {
		return ""
	}
	first := f.Root.Child(0)
	if first.Type() != KindComment || !strings.HasPrefix(f.Text(first), "/**") {
		return ""
	}
	next := first.NextSibling()
	if next != nil && next.StartPoint().Row-first.EndPoint().Row < 2 {
		return ""
	}
	return f.Text(first)
}
