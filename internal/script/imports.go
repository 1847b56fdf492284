package script

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/resolver"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// ErrUnresolvedImport is the load error of an import whose module could not
// be located.
var ErrUnresolvedImport = errors.New("unresolved import")

// maxImportDepth bounds re-export chains and `export *` fan-out.
const maxImportDepth = 16

// module is a loaded file. Modules are memoized per resolved path for the
// whole run; a module still loading is returned as is, so import cycles
// see partial exports instead of recursing.
type module struct {
	path    string
	state   *fileState
	loading bool
	err     error
}

type resolution struct {
	mod resolver.Module
	ok  bool
}

// resolve locates specifier relative to st's file. Failures are reported
// once per file and specifier.
func (r *run) resolve(st *fileState, specifier string, node *sitter.Node) (resolver.Module, bool) {
	key := st.file.Path + "\x00" + specifier
	if res, ok := r.resolved[key]; ok {
		return res.mod, res.ok
	}
	if r.opts.Resolver == nil {
		r.resolved[key] = resolution{}
		r.errorAt(st, node, fmt.Sprintf("cannot resolve %q: %v", specifier, resolver.ErrNoResolver), resolver.ErrNoResolver)
		return resolver.Module{}, false
	}
	mod, err := r.opts.Resolver.Resolve(r.ctx, specifier, st.file.Path)
	if err != nil {
		r.resolved[key] = resolution{}
		r.errorAt(st, node, fmt.Sprintf("cannot resolve %q: %v", specifier, err), err)
		return resolver.Module{}, false
	}
	r.resolved[key] = resolution{mod: mod, ok: true}
	return mod, true
}

// open parses and binds a resolved module, once per path.
func (r *run) open(mod resolver.Module) *module {
	if m, ok := r.modules[mod.Path]; ok {
		return m
	}
	m := &module{path: mod.Path}
	r.modules[mod.Path] = m
	r.depend(mod.Path)

	f, err := r.parseModule(mod)
	if err != nil {
		m.err = err
		r.report(LevelError, mod.Path, lineOf(err), err.Error(), err)
		return m
	}
	r.files = append(r.files, f)
	m.state = newFileState(r, f)
	m.loading = true
	m.state.root.bindProgram(f.Root)
	m.loading = false
	r.log.Debug("module loaded", "path", mod.Path, "exports", len(m.state.exports))
	return m
}

// parseModule parses a module file. For a single-file component the plain
// script block is preferred over the setup one.
func (r *run) parseModule(mod resolver.Module) (*syntax.File, error) {
	blocks, err := syntax.SplitSFC(r.ctx, mod.Path, mod.Content)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%s: no script block: %w", mod.Path, syntax.ErrMalformedSource)
	}
	block := blocks[0]
	for _, b := range blocks {
		if !b.Setup {
			block = b
			break
		}
	}
	f, err := syntax.Parse(r.ctx, mod.Path, block.Content, block.Lang)
	if err != nil {
		return nil, shiftError(err, block.LineOffset)
	}
	f.LineOffset = block.LineOffset
	return f, nil
}

// loadFrom resolves and opens specifier as imported by st. node, when set,
// locates the failure message.
func (r *run) loadFrom(st *fileState, specifier string, node *sitter.Node) *module {
	mod, ok := r.resolve(st, specifier, node)
	if !ok {
		return nil
	}
	return r.open(mod)
}

// importer is the loader of an import declared by st.
func (r *run) importer(mod resolver.Module, ok bool, imported string) scope.Loader {
	return func() (scope.Resolved, error) {
		if !ok {
			return scope.Resolved{}, ErrUnresolvedImport
		}
		m := r.open(mod)
		if m.state == nil {
			return scope.Resolved{}, m.err
		}
		return m.state.export(imported, 0), nil
	}
}

// follow returns the binding an import entry stands for. Entries that are
// not imports, and imports that fail to load, are returned unchanged: the
// placeholder is typed unknown.
func (r *run) follow(e *scope.Entry) *scope.Entry {
	for depth := 0; e != nil && e.Import != nil && depth < maxImportDepth; depth++ {
		res, err := e.Import.Load()
		switch {
		case err != nil:
			return e
		case res.Namespace != nil:
			v := value.New(value.T(value.TypeObject), res.Namespace.ID, e.Key)
			v.Kind = "namespace"
			return &scope.Entry{Key: e.Key, Value: v, Namespace: res.Namespace, Nodes: e.Nodes, File: e.File}
		case res.Entry == nil:
			return e
		}
		e = res.Entry
	}
	return e
}

// export returns what the module exposes under name: "default", "*" for
// the whole module as a namespace, or a named export, searching `export *`
// modules last.
func (st *fileState) export(name string, depth int) scope.Resolved {
	switch name {
	case "*":
		return scope.Resolved{Namespace: scope.NewNamespace(st.file.Path, st.exportScope(0))}
	case "default":
		if st.def != nil {
			return scope.Resolved{Entry: st.def}
		}
		return scope.Resolved{}
	}
	if e, ok := st.exports[name]; ok {
		return scope.Resolved{Entry: e}
	}
	if depth >= maxImportDepth {
		return scope.Resolved{}
	}
	for _, spec := range st.stars {
		m := st.run.loadFrom(st, spec, nil)
		if m == nil || m.state == nil {
			continue
		}
		if res := m.state.export(name, depth+1); res.Entry != nil || res.Namespace != nil {
			return res
		}
	}
	return scope.Resolved{}
}

// exportScope is the namespace scope of the module.
func (st *fileState) exportScope(depth int) scope.Scope {
	s := st.exports.Copy()
	if st.def != nil {
		s["default"] = st.def
	}
	if depth >= maxImportDepth {
		return s
	}
	for _, spec := range st.stars {
		m := st.run.loadFrom(st, spec, nil)
		if m == nil || m.state == nil || m.loading {
			continue
		}
		for k, e := range m.state.exportScope(depth + 1) {
			if _, ok := s[k]; !ok && k != "default" {
				s[k] = e
			}
		}
	}
	return s
}

// bindImport declares the bindings of an import statement. The module is
// located right away so a missing one is reported even when its bindings
// are never used; it is parsed on first use only.
func (c *Context) bindImport(stmt *sitter.Node) {
	source, ok := c.st.file.StringValue(syntax.Field(stmt, "source"))
	if !ok {
		return
	}
	clause := syntax.FirstNamed(stmt, syntax.KindImportClause)
	if clause == nil {
		return
	}
	specs := c.importSpecifiers(clause)
	if c.isFrameworkModule(source) {
		for _, s := range specs {
			c.st.framework[s.local] = s.imported
		}
		return
	}

	mod, resolved := c.st.run.resolve(c.st, source, stmt)
	for _, s := range specs {
		imp := scope.NewImport(s.local, s.imported, source, c.st.run.importer(mod, resolved, s.imported))
		c.st.imports[s.local] = imp
		v := value.Unknown(s.local)
		v.Kind = "import"
		c.bind(s.local, v, scope.Nodes{Value: s.node, Comment: stmt}, scope.BindOptions{Import: imp, ForceType: true})
	}
}

type importSpec struct {
	local    string
	imported string
	node     *sitter.Node
}

func (c *Context) importSpecifiers(clause *sitter.Node) []importSpec {
	var out []importSpec
	for _, child := range syntax.NamedChildren(clause) {
		switch child.Type() {
		case syntax.KindIdentifier:
			out = append(out, importSpec{local: c.text(child), imported: "default", node: child})
		case syntax.KindNamespaceImport:
			if id := syntax.FirstNamed(child, syntax.KindIdentifier); id != nil {
				out = append(out, importSpec{local: c.text(id), imported: "*", node: child})
			}
		case syntax.KindNamedImports:
			for _, spec := range syntax.NamedChildren(child) {
				if spec.Type() != syntax.KindImportSpecifier {
					continue
				}
				name := syntax.Field(spec, "name")
				local := name
				if alias := syntax.Field(spec, "alias"); alias != nil {
					local = alias
				}
				imported, ok := c.st.file.PropertyKey(name)
				if !ok {
					imported = c.text(name)
				}
				out = append(out, importSpec{local: c.text(local), imported: imported, node: spec})
			}
		}
	}
	return out
}

func (c *Context) isFrameworkModule(source string) bool {
	for _, m := range c.st.run.opts.FrameworkModules {
		if m == source {
			return true
		}
	}
	return false
}

// bindExport binds the declaration an export statement wraps and records
// what the file exposes.
func (c *Context) bindExport(stmt *sitter.Node) {
	st := c.st
	isDefault := syntax.HasToken(stmt, syntax.KindDefaultKeyword)

	if decl := syntax.Field(stmt, "declaration"); decl != nil {
		c.bindStatement(decl)
		names := c.declaredNames(decl)
		for _, name := range names {
			e, ok := c.scope.Get(name)
			if !ok {
				continue
			}
			if isDefault {
				st.def = e
				st.defNode = decl
				continue
			}
			st.exports[name] = e
		}
		if isDefault && len(names) == 0 {
			st.defNode = decl
			st.def = c.SetScopeValue("default", decl, c.Value(decl), scope.BindOptions{})
		}
		return
	}

	if isDefault {
		v := syntax.Field(stmt, "value")
		if v == nil {
			return
		}
		st.defNode = v
		if id := syntax.Unwrap(v); id.Type() == syntax.KindIdentifier {
			if e, ok := c.scope.Get(c.text(id)); ok {
				st.def = e
				return
			}
		}
		st.def = c.bind("default", c.Value(v), scope.Nodes{Value: v, Comment: stmt}, scope.BindOptions{ForceType: true})
		return
	}

	source := syntax.Field(stmt, "source")
	clause := syntax.FirstNamed(stmt, syntax.KindExportClause)
	if source == nil {
		for _, spec := range c.exportSpecifiers(clause) {
			st.localExports = append(st.localExports, exportAlias{local: spec.local, exported: spec.imported, node: spec.node})
		}
		return
	}

	from, ok := st.file.StringValue(source)
	if !ok || c.isFrameworkModule(from) {
		return
	}
	mod, resolved := st.run.resolve(st, from, stmt)
	if clause == nil {
		if ns := syntax.FirstNamed(stmt, "namespace_export"); ns != nil {
			name := c.text(firstOf(ns))
			imp := scope.NewImport(name, "*", from, st.run.importer(mod, resolved, "*"))
			st.exports[name] = &scope.Entry{Key: name, Value: value.Unknown(name), Import: imp, Nodes: scope.Nodes{Value: ns, Comment: stmt}, File: st.file}
			return
		}
		st.stars = append(st.stars, from)
		return
	}
	// In `export { a as b } from`, local is the name in the source module.
	for _, spec := range c.exportSpecifiers(clause) {
		imp := scope.NewImport(spec.imported, spec.local, from, st.run.importer(mod, resolved, spec.local))
		e := &scope.Entry{Key: spec.imported, Value: value.Unknown(spec.imported), Import: imp, Nodes: scope.Nodes{Value: spec.node, Comment: stmt}, File: st.file}
		if spec.imported == "default" {
			st.def = e
			continue
		}
		st.exports[spec.imported] = e
	}
}

// exportSpecifiers lists `local as exported` pairs; imported holds the
// exported name.
func (c *Context) exportSpecifiers(clause *sitter.Node) []importSpec {
	var out []importSpec
	for _, spec := range syntax.NamedChildren(clause) {
		if spec.Type() != syntax.KindExportSpecifier {
			continue
		}
		name := syntax.Field(spec, "name")
		exported := name
		if alias := syntax.Field(spec, "alias"); alias != nil {
			exported = alias
		}
		local, ok := c.st.file.PropertyKey(name)
		if !ok {
			local = c.text(name)
		}
		out = append(out, importSpec{local: local, imported: c.text(exported), node: spec})
	}
	return out
}

// declaredNames lists the value names a declaration introduces.
func (c *Context) declaredNames(decl *sitter.Node) []string {
	switch decl.Type() {
	case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
		var names []string
		for _, d := range syntax.NamedChildren(decl) {
			if d.Type() == syntax.KindVariableDeclarator {
				names = append(names, c.patternNames(syntax.Field(d, "name"))...)
			}
		}
		return names
	case syntax.KindFunctionDeclaration, syntax.KindGeneratorDeclaration, syntax.KindClassDeclaration:
		if name := syntax.Field(decl, "name"); name != nil {
			return []string{c.text(name)}
		}
	}
	return nil
}

// patternNames lists the identifiers bound by a binding target.
func (c *Context) patternNames(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case syntax.KindIdentifier, syntax.KindShorthandPattern:
		return []string{c.text(n)}
	case syntax.KindPairPattern:
		return c.patternNames(syntax.Field(n, "value"))
	case syntax.KindAssignmentPattern, syntax.KindObjectAssignPattern:
		return c.patternNames(syntax.Field(n, "left"))
	}
	var names []string
	for _, child := range syntax.NamedChildren(n) {
		names = append(names, c.patternNames(child)...)
	}
	return names
}

// finishExports binds `export { a as b }` clauses once the whole file is
// bound.
func (c *Context) finishExports() {
	st := c.st
	for _, alias := range st.localExports {
		e, ok := c.scope.Get(alias.local)
		if !ok {
			continue
		}
		if alias.exported == "default" {
			st.def = e
			st.defNode = e.Nodes.Value
			continue
		}
		st.exports[alias.exported] = e
	}
}

// bindCommonJS records `module.exports = …` and `exports.name = …`.
func (c *Context) bindCommonJS(stmt *sitter.Node) {
	expr := syntax.Unwrap(firstOf(stmt))
	if expr == nil || expr.Type() != syntax.KindAssignment {
		return
	}
	target := c.st.file.DottedName(syntax.Field(expr, "left"))
	right := syntax.Field(expr, "right")
	if right == nil {
		return
	}
	switch {
	case target == "module.exports":
		c.st.defNode = right
		c.st.def = c.bind("module.exports", c.Value(right), scope.Nodes{Value: right, Comment: stmt}, scope.BindOptions{ForceType: true})
		if obj := syntax.Unwrap(right); obj.Type() == syntax.KindObject {
			for _, member := range syntax.NamedChildren(obj) {
				name, ok := c.st.file.MemberName(member)
				if !ok {
					continue
				}
				c.st.exports[name] = &scope.Entry{
					Key:      name,
					Value:    c.Value(syntax.MemberValue(member)),
					Function: isFunctionNode(syntax.MemberValue(member)),
					Nodes:    scope.Nodes{Value: member, Comment: member},
					File:     c.st.file,
				}
			}
		}
	case strings.HasPrefix(target, "exports."), strings.HasPrefix(target, "module.exports."):
		name := target[strings.LastIndexByte(target, '.')+1:]
		c.st.exports[name] = &scope.Entry{
			Key:      name,
			Value:    c.Value(right),
			Function: isFunctionNode(right),
			Nodes:    scope.Nodes{Value: right, Comment: stmt},
			File:     c.st.file,
		}
	}
}

// shiftError moves the line of a parse error from block to file
// coordinates.
func shiftError(err error, offset int) error {
	var pe *syntax.ParseError
	if offset != 0 && errors.As(err, &pe) {
		shifted := *pe
		shifted.Line += offset
		return &shifted
	}
	return err
}

func lineOf(err error) int {
	var pe *syntax.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}
