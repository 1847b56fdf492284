package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/syntax"
)

// bindProgram is the register pass over a file: it fills the type table,
// binds every top-level statement in source order and records exports.
func (c *Context) bindProgram(program *sitter.Node) {
	c.registerTypes(program)
	for _, stmt := range syntax.NamedChildren(program) {
		c.bindStatement(stmt)
	}
	c.finishExports()
}

func (c *Context) bindStatement(stmt *sitter.Node) {
	switch stmt.Type() {
	case syntax.KindImportStatement:
		c.bindImport(stmt)
	case syntax.KindExportStatement:
		c.bindExport(stmt)
	case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
		c.bindDeclaration(stmt)
	case syntax.KindFunctionDeclaration, syntax.KindGeneratorDeclaration:
		c.bindFunction(stmt)
	case syntax.KindClassDeclaration:
		c.bindClass(stmt)
	case syntax.KindExpressionStatement:
		c.bindExpression(stmt)
		c.bindCommonJS(stmt)
	case syntax.KindAmbientDeclaration, syntax.KindFunctionSignature:
		c.bindSignature(stmt)
	}
}

// registerTypes fills the type table before any value is bound, so type
// references may point forward.
func (c *Context) registerTypes(program *sitter.Node) {
	for _, stmt := range syntax.NamedChildren(program) {
		decl := stmt
		if stmt.Type() == syntax.KindExportStatement {
			if inner := syntax.Field(stmt, "declaration"); inner != nil {
				decl = inner
			}
		}
		switch decl.Type() {
		case syntax.KindTypeAliasDeclaration, syntax.KindInterfaceDeclaration, syntax.KindEnumDeclaration:
			name := syntax.Field(decl, "name")
			if name == nil {
				continue
			}
			c.st.types[c.text(name)] = decl
		}
	}
}
