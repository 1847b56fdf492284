package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/composition"
	"vuedoc/internal/syntax"
)

// dependencies scans body for reads of component state: `this.x`,
// `props.x` through a props binding, and names own reports as state
// (`count` or `count.value` in a setup scope). Results keep first-seen
// order.
func (c *Context) dependencies(body *sitter.Node, own func(string) bool) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case syntax.KindMemberExpression:
			object := syntax.Unwrap(syntax.Field(n, "object"))
			property := c.text(syntax.Field(n, "property"))
			if object != nil {
				switch object.Type() {
				case syntax.KindThis:
					add(property)
					return
				case syntax.KindIdentifier:
					name := c.text(object)
					if e, ok := c.scope.Get(name); ok && e.Composition.Feature() == composition.Props {
						add(property)
						return
					}
				}
			}
			walk(object)
			return
		case syntax.KindIdentifier, syntax.KindShorthandProp:
			if own != nil && own(c.text(n)) {
				add(c.text(n))
			}
			return
		}
		for _, child := range syntax.NamedChildren(n) {
			walk(child)
		}
	}
	walk(body)
	return out
}
