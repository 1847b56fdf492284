package syntax

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// Block is one <script> block of a single-file component, or a whole script
// file when the component is not an SFC.
type Block struct {
	Setup      bool
	Lang       Lang
	Content    []byte
	LineOffset int
	// Src is the external file referenced by <script src="...">.
	Src   string
	Attrs map[string]string
}

var scriptTag = regexp.MustCompile(`(?is)<script\b([^>]*)>(.*?)</script>`)
var tagAttr = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+)))?`)

// SplitSFC returns the script blocks of a .vue file in source order. Files
// with other extensions are returned as a single block.
func SplitSFC(ctx context.Context, path string, content []byte) ([]Block, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".vue") {
		return []Block{{Lang: LangFromPath(path), Content: content}}, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	var blocks []Block
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "script_element" {
			continue
		}
		block, err := scriptBlock(node, content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 && bytes.Contains(bytes.ToLower(content), []byte("<script")) {
		return splitWithPattern(path, content)
	}
	return blocks, nil
}

func scriptBlock(node *sitter.Node, content []byte) (Block, error) {
	block := Block{Attrs: map[string]string{}}
	for _, child := range Children(node) {
		switch child.Type() {
		case "start_tag":
			for _, attr := range NamedChildren(child) {
				if attr.Type() != "attribute" {
					continue
				}
				name, value := attribute(attr, content)
				block.Attrs[strings.ToLower(name)] = value
			}
		case "raw_text":
			block.Content = content[child.StartByte():child.EndByte()]
			row, err := safecast.Conv[int](child.StartPoint().Row)
			if err != nil {
				return block, err
			}
			block.LineOffset = row
			if child.StartPoint().Column > 0 {
				// The script shares its first line with the tag; pad so
				// columns stay right.
				pad := bytes.Repeat([]byte(" "), int(child.StartPoint().Column))
				block.Content = append(pad, block.Content...)
			}
		}
	}
	return finishBlock(block)
}

func attribute(node *sitter.Node, content []byte) (string, string) {
	var name, value string
	for _, child := range Children(node) {
		switch child.Type() {
		case "attribute_name":
			name = child.Content(content)
		case "quoted_attribute_value":
			for _, inner := range Children(child) {
				if inner.Type() == "attribute_value" {
					value = inner.Content(content)
				}
			}
		case "attribute_value":
			value = child.Content(content)
		}
	}
	return name, value
}

func splitWithPattern(path string, content []byte) ([]Block, error) {
	var blocks []Block
	for _, m := range scriptTag.FindAllSubmatchIndex(content, -1) {
		block := Block{Attrs: map[string]string{}}
		for _, a := range tagAttr.FindAllSubmatch(content[m[2]:m[3]], -1) {
			value := string(a[2]) + string(a[3]) + string(a[4])
			block.Attrs[strings.ToLower(string(a[1]))] = value
		}
		block.Content = content[m[4]:m[5]]
		block.LineOffset = bytes.Count(content[:m[4]], []byte("\n"))
		if start := bytes.LastIndexByte(content[:m[4]], '\n'); m[4]-start-1 > 0 {
			block.Content = append(bytes.Repeat([]byte(" "), m[4]-start-1), block.Content...)
		}
		b, err := finishBlock(block)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func finishBlock(block Block) (Block, error) {
	_, block.Setup = block.Attrs["setup"]
	block.Src = block.Attrs["src"]
	lang, err := ParseLang(block.Attrs["lang"])
	if err != nil {
		return block, err
	}
	block.Lang = lang
	return block, nil
}
