package generator

// DocSection represents a component section of a generated Markdown document.
type DocSection struct {
	ID      string // Component ID from the section anchor, empty for the preamble
	Title   string
	Content string // The text of the section, anchor included
}

// DocPatch replaces, adds or removes one component section.
type DocPatch struct {
	SectionID  string
	NewContent string // Empty removes the section
}

// Format selects the rendered output.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatMarkdown, FormatJSON:
		return f, true
	case "md":
		return FormatMarkdown, true
	}
	return "", false
}
