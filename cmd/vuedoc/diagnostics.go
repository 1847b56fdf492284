package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"vuedoc/internal/extractor"
	"vuedoc/internal/script"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
	pathColor    = color.New(color.Bold)
)

// printMessages writes one line per message, colored by level, with paths
// relative to root when possible.
func printMessages(w io.Writer, root string, doc *extractor.ComponentDoc) {
	for _, m := range doc.Messages {
		loc := relPath(root, m.File)
		if m.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, m.Line)
		}
		label := warningColor.Sprint("warning")
		if m.Level == script.LevelError {
			label = errorColor.Sprint("error")
		}
		fmt.Fprintf(w, "%s: %s: %s\n", pathColor.Sprint(loc), label, m.Text)
	}
}

// summarize prints a one-line status for a batch of components.
func summarize(w io.Writer, docs []*extractor.ComponentDoc) {
	var errs, warns int
	for _, d := range docs {
		for _, m := range d.Messages {
			if m.Level == script.LevelError {
				errs++
			} else {
				warns++
			}
		}
	}
	status := okColor.Sprint("ok")
	switch {
	case errs > 0:
		status = errorColor.Sprintf("%d errors", errs)
	case warns > 0:
		status = warningColor.Sprintf("%d warnings", warns)
	}
	parts := []string{fmt.Sprintf("%d components", len(docs)), status}
	if errs > 0 && warns > 0 {
		parts = append(parts, warningColor.Sprintf("%d warnings", warns))
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}
