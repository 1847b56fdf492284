// Package doctag parses documentation comments into a description and a
// list of `@keyword` tags.
package doctag

import (
	"fmt"
	"regexp"
	"strings"
)

// Keyword is one `@name description` tag.
type Keyword struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Comment is a parsed documentation comment. Warnings describe tags that
// were dropped because they could not be parsed.
type Comment struct {
	Description string
	Keywords    []Keyword
	Warnings    []string
}

var keywordName = regexp.MustCompile(`^[A-Za-z][\w:-]*$`)

// Parse reads a raw block or line comment. Malformed tags are dropped with a
// warning; the rest of the comment is still returned.
func Parse(raw string) Comment {
	var c Comment
	var desc []string
	var current *Keyword
	var body []string

	flush := func() {
		if current != nil {
			current.Description = strings.TrimSpace(strings.Join(body, "\n"))
			c.Keywords = append(c.Keywords, *current)
		}
		current = nil
		body = nil
	}

	skipping := false
	for _, line := range Clean(raw) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			flush()
			name, rest, _ := strings.Cut(trimmed[1:], " ")
			name, rest = splitTab(name, rest)
			if !keywordName.MatchString(name) {
				c.Warnings = append(c.Warnings, fmt.Sprintf("malformed tag %q", trimmed))
				skipping = true
				continue
			}
			skipping = false
			current = &Keyword{Name: name}
			if rest = strings.TrimSpace(rest); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		switch {
		case current != nil:
			body = append(body, trimmed)
		case skipping:
		default:
			desc = append(desc, trimmed)
		}
	}
	flush()
	c.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return c
}

func splitTab(name, rest string) (string, string) {
	if i := strings.IndexByte(name, '\t'); i >= 0 {
		return name[:i], name[i+1:] + " " + rest
	}
	return name, rest
}

// Clean strips comment markers and the leading `*` of block comment lines.
func Clean(raw string) []string {
	raw = strings.TrimSpace(raw)
	block := strings.HasPrefix(raw, "/*")
	if block {
		raw = strings.TrimPrefix(raw, "/**")
		raw = strings.TrimPrefix(raw, "/*")
		raw = strings.TrimSuffix(raw, "*/")
	}
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if block {
			line = strings.TrimPrefix(line, "*")
		} else {
			line = strings.TrimPrefix(line, "//")
			line = strings.TrimPrefix(line, "/")
		}
		out = append(out, strings.TrimPrefix(line, " "))
	}
	for len(out) > 0 && strings.TrimSpace(out[0]) == "" {
		out = out[1:]
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Has reports whether c carries a tag named name.
func (c Comment) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Get returns the first tag named name.
func (c Comment) Get(name string) (Keyword, bool) {
	for _, k := range c.Keywords {
		if k.Name == name {
			return k, true
		}
	}
	return Keyword{}, false
}

// All returns every tag named name, in order.
func (c Comment) All(name string) []Keyword {
	var out []Keyword
	for _, k := range c.Keywords {
		if k.Name == name {
			out = append(out, k)
		}
	}
	return out
}
