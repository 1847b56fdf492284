// Package syntax wraps tree-sitter for the JavaScript and TypeScript found in
// component scripts. It owns parsing, node helpers and comment attachment so
// the rest of the engine never touches grammar details directly.
package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Lang is a script language understood by the parser.
type Lang string

const (
	LangJS  Lang = "js"
	LangTS  Lang = "ts"
	LangTSX Lang = "tsx"
	LangJSX Lang = "jsx"
)

// ParseLang maps a `lang` attribute or extension to a Lang. Empty input means
// plain JavaScript.
func ParseLang(s string) (Lang, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "js", "mjs", "cjs", "javascript":
		return LangJS, nil
	case "ts", "mts", "cts", "typescript":
		return LangTS, nil
	case "tsx":
		return LangTSX, nil
	case "jsx":
		return LangJSX, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedLanguage)
}

// LangFromPath guesses the language from a file extension.
func LangFromPath(path string) Lang {
	lang, err := ParseLang(filepath.Ext(path))
	if err != nil {
		return LangJS
	}
	return lang
}

// IsTypeScript reports whether type annotations are valid in the language.
func (l Lang) IsTypeScript() bool {
	return l == LangTS || l == LangTSX
}

func (l Lang) grammar() *sitter.Language {
	switch l {
	case LangTS:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// File is a parsed script. Source holds only the script text; LineOffset is
// the number of lines preceding it in the enclosing file (non-zero for SFC
// blocks) so reported lines match the file on disk.
type File struct {
	Path       string
	Lang       Lang
	Source     []byte
	Tree       *sitter.Tree
	Root       *sitter.Node
	LineOffset int
}

// Parse builds the syntax tree of src. A tree containing syntax errors is
// reported as a *ParseError wrapping ErrMalformedSource.
func Parse(ctx context.Context, path string, src []byte, lang Lang) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	f := &File{Path: path, Lang: lang, Source: src, Tree: tree, Root: tree.RootNode()}
	if f.Root.HasError() {
		bad := firstError(f.Root)
		line, col := f.Position(bad)
		return nil, &ParseError{
			Path:    path,
			Line:    line,
			Column:  col,
			Message: "unexpected " + describe(f, bad),
			Cause:   ErrMalformedSource,
		}
	}
	return f, nil
}

// Close releases the tree.
func (f *File) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
	}
}

// Text returns the verbatim source of n.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.Source)
}

// Position returns the 1-indexed line and 0-indexed column of n in the
// enclosing file.
func (f *File) Position(n *sitter.Node) (int, int) {
	if n == nil {
		return 0, 0
	}
	p := n.StartPoint()
	row, err := safecast.Conv[int](p.Row)
	if err != nil {
		return 0, 0
	}
	col, err := safecast.Conv[int](p.Column)
	if err != nil {
		col = 0
	}
	return row + 1 + f.LineOffset, col
}

// Line returns the 1-indexed line of n.
func (f *File) Line(n *sitter.Node) int {
	line, _ := f.Position(n)
	return line
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstError(child)
		}
	}
	return n
}

func describe(f *File, n *sitter.Node) string {
	if n.IsMissing() {
		return "end of input, missing " + n.Type()
	}
	text := strings.TrimSpace(f.Text(n))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 32 {
		text = text[:32] + "..."
	}
	if text == "" {
		return "token"
	}
	return fmt.Sprintf("%q", text)
}
