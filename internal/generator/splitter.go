package generator

import (
	"bufio"
	"strings"
)

// SplitMarkdown cuts a generated document into its anchored sections. Text
// before the first anchor becomes a section with an empty ID.
func SplitMarkdown(content string) []DocSection {
	var sections []DocSection
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	current := DocSection{}
	var buf strings.Builder
	flush := func() {
		if current.ID == "" && buf.Len() == 0 {
			return
		}
		current.Content = buf.String()
		current.Title = sectionTitle(current.Content)
		sections = append(sections, current)
		buf.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if id, ok := parseAnchor(line); ok {
			flush()
			current = DocSection{ID: id}
		}
		buf.WriteString(line + "\n")
	}
	flush()

	return sections
}

// JoinSections reassembles sections into a document.
func JoinSections(sections []DocSection) string {
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(s.Content)
	}
	return sb.String()
}

func parseAnchor(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, anchorPrefix) || !strings.HasSuffix(trimmed, anchorSuffix) {
		return "", false
	}
	id := strings.TrimSpace(trimmed[len(anchorPrefix) : len(trimmed)-len(anchorSuffix)])
	return id, id != ""
}

func sectionTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			return strings.TrimSpace(line[3:])
		}
	}
	return ""
}
