package script

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/doctag"
	"vuedoc/internal/entry"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// collector gathers entries in emission order. The first entry of a kind
// and name wins; later ones only fill in what it lacks.
type collector struct {
	entries []entry.Entry
	index   map[string]entry.Entry
	// exposed is the component's allow-list, nil when it declares none.
	exposed map[string]bool
}

func newCollector() *collector {
	return &collector{index: map[string]entry.Entry{}}
}

func collectorKey(kind entry.Kind, name string) string {
	return string(kind) + "\x00" + name
}

func (o *collector) add(e entry.Entry) {
	if e == nil {
		return
	}
	m := e.Meta()
	key := collectorKey(m.Kind, m.Name)
	if prev, ok := o.index[key]; ok {
		merge(prev, e)
		return
	}
	o.index[key] = e
	o.entries = append(o.entries, e)
}

// prepend adds e in front of every entry collected so far.
func (o *collector) prepend(e entry.Entry) {
	m := e.Meta()
	key := collectorKey(m.Kind, m.Name)
	if _, ok := o.index[key]; ok {
		return
	}
	o.index[key] = e
	o.entries = append([]entry.Entry{e}, o.entries...)
}

func (o *collector) get(kind entry.Kind, name string) (entry.Entry, bool) {
	e, ok := o.index[collectorKey(kind, name)]
	return e, ok
}

func (o *collector) has(kind entry.Kind, name string) bool {
	_, ok := o.get(kind, name)
	return ok
}

// expose adds names to the allow-list. Calling it with no names still
// declares an (empty) allow-list.
func (o *collector) expose(names ...string) {
	if o.exposed == nil {
		o.exposed = map[string]bool{}
	}
	for _, n := range names {
		o.exposed[n] = true
	}
}

func merge(prev, next entry.Entry) {
	pm, nm := prev.Meta(), next.Meta()
	if pm.Description == "" {
		pm.Description = nm.Description
	}
	if len(pm.Keywords) == 0 {
		pm.Keywords = nm.Keywords
	}
	switch p := prev.(type) {
	case *entry.Event:
		n := next.(*entry.Event)
		if len(p.Arguments) == 0 {
			p.Arguments = n.Arguments
			p.Syntax = n.Syntax
		}
	case *entry.Prop:
		n := next.(*entry.Prop)
		if p.Default == "" {
			p.Default = n.Default
		}
		if p.Type.IsUnknown() {
			p.Type = n.Type
		}
		p.DescribeModel = p.DescribeModel || n.DescribeModel
	}
}

// finish applies visibility and drops what the caller does not want. This is
// the only place entries are filtered.
func (o *collector) finish(opts Options) entry.List {
	policy := entry.Policy{
		Default: opts.DefaultVisibility,
		Ignored: opts.IgnoredVisibilities,
		Exposed: o.exposed,
	}
	features := map[entry.Kind]bool{}
	for _, k := range opts.Features {
		features[k] = true
	}
	out := make(entry.List, 0, len(o.entries))
	for _, e := range o.entries {
		policy.Apply(e)
		if !policy.Keep(e) {
			continue
		}
		if len(features) > 0 && !features[e.Meta().Kind] {
			continue
		}
		out = append(out, e)
		if opts.OnEntry != nil {
			opts.OnEntry(e)
		}
	}
	return out
}

// doc returns the parsed documentation comment of n: the comment right
// above it, else one trailing it on the same line. Malformed tags are
// reported once as warnings.
func (c *Context) doc(n *sitter.Node) doctag.Comment {
	if n == nil {
		return doctag.Comment{}
	}
	key := syntax.Key(n)
	if d, ok := c.st.docs[key]; ok {
		return d
	}
	f := c.st.file
	raw := f.LeadingComment(n)
	if raw == "" {
		raw = f.TrailingComment(n)
	}
	d := doctag.Parse(raw)
	for _, w := range d.Warnings {
		c.st.run.report(LevelWarning, f.Path, f.Line(n), w, nil)
	}
	c.st.docs[key] = d
	return d
}

func (c *Context) common(kind entry.Kind, name string, n *sitter.Node) entry.Common {
	d := c.doc(n)
	return entry.Common{
		Kind:        kind,
		Name:        name,
		Description: d.Description,
		Keywords:    d.Keywords,
		Line:        c.st.file.Line(n),
	}
}

// typeTag reads `@type {T}`.
func typeTag(keywords []doctag.Keyword) (value.Type, bool) {
	for _, k := range keywords {
		if k.Name == "type" {
			if t, _ := braced(k.Description); t != "" {
				return value.T(t), true
			}
		}
	}
	return nil, false
}

func keyword(keywords []doctag.Keyword, names ...string) (doctag.Keyword, bool) {
	for _, k := range keywords {
		for _, n := range names {
			if k.Name == n {
				return k, true
			}
		}
	}
	return doctag.Keyword{}, false
}

// braced splits "{T} rest" into T and rest.
func braced(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return "", s
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), strings.TrimSpace(s[i+1:])
			}
		}
	}
	return "", s
}

func initialValue(v *value.Value) string {
	if v == nil || v.Raw == "" {
		return "undefined"
	}
	return v.Raw
}

// dataEntry documents a state binding.
func (c *Context) dataEntry(name string, e *scope.Entry) *entry.Data {
	owner := c.contextFor(e)
	d := &entry.Data{
		Common:       owner.common(entry.KindData, name, e.Nodes.Comment),
		Type:         e.Type(),
		InitialValue: initialValue(e.Value),
	}
	if t, ok := typeTag(d.Keywords); ok {
		d.Type = t
	}
	if k, ok := keyword(d.Keywords, "initialValue"); ok && k.Description != "" {
		d.InitialValue = k.Description
	}
	return d
}

// dataValue documents a member of a data object.
func (c *Context) dataValue(name string, v *value.Value, node *sitter.Node) *entry.Data {
	d := &entry.Data{
		Common:       c.common(entry.KindData, name, node),
		Type:         v.Type,
		InitialValue: initialValue(v),
	}
	if t, ok := typeTag(d.Keywords); ok {
		d.Type = t
	}
	if k, ok := keyword(d.Keywords, "initialValue"); ok && k.Description != "" {
		d.InitialValue = k.Description
	}
	return d
}

func (c *Context) computedEntry(name string, t value.Type, node *sitter.Node, deps []string) *entry.Computed {
	e := &entry.Computed{
		Common:       c.common(entry.KindComputed, name, node),
		Type:         t,
		Dependencies: deps,
	}
	if tt, ok := typeTag(e.Keywords); ok {
		e.Type = tt
	}
	return e
}

// methodEntry documents fn under name. commentNode carries the comment.
func (c *Context) methodEntry(name string, fn, commentNode *sitter.Node) *entry.Method {
	m := &entry.Method{Common: c.common(entry.KindMethod, name, commentNode)}
	m.Params = c.params(fn, m.Keywords, "param", "arg", "argument")
	m.Returns = entry.Returns{Type: value.T(value.TypeVoid)}
	if fn != nil {
		m.Returns.Type = c.ReturnType(fn)
	}
	if k, ok := keyword(m.Keywords, "returns", "return"); ok {
		t, desc := braced(k.Description)
		if t != "" {
			m.Returns.Type = value.T(t)
		}
		m.Returns.Description = desc
	}
	if k, ok := keyword(m.Keywords, "syntax"); ok && k.Description != "" {
		m.Syntax = []string{k.Description}
	} else {
		m.Syntax = []string{fmt.Sprintf("%s(%s): %s", name, paramSyntax(m.Params), m.Returns.Type)}
	}
	return m
}

func paramSyntax(params []entry.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		name := p.Name
		if p.Rest {
			name = "..." + name
		}
		if p.Optional {
			name += "?"
		}
		parts = append(parts, name+": "+p.Type.String())
	}
	return strings.Join(parts, ", ")
}

// params lists the parameters of fn, completed by the @param (or given)
// tags of its comment.
func (c *Context) params(fn *sitter.Node, keywords []doctag.Keyword, tags ...string) []entry.Param {
	var nodes []*sitter.Node
	if fn != nil {
		if single := syntax.Field(fn, "parameter"); single != nil {
			nodes = []*sitter.Node{single}
		} else {
			nodes = paramList(syntax.Field(fn, "parameters"))
		}
	}
	params := make([]entry.Param, 0, len(nodes))
	for _, n := range nodes {
		if p, ok := c.param(n); ok {
			params = append(params, p)
		}
	}
	return applyParamTags(params, keywords, tags...)
}

func (c *Context) param(n *sitter.Node) (entry.Param, bool) {
	untyped := value.T(value.TypeAny)
	switch n.Type() {
	case syntax.KindIdentifier:
		return entry.Param{Name: c.text(n), Type: untyped}, true
	case syntax.KindAssignmentPattern:
		right := syntax.Field(n, "right")
		return entry.Param{Name: c.text(syntax.Field(n, "left")), Type: c.TypeOf(right), Default: c.text(right), Optional: true}, true
	case syntax.KindRestPattern:
		return entry.Param{Name: c.text(firstOf(n)), Type: value.T(value.TypeAny + "[]"), Rest: true}, true
	case syntax.KindObjectPattern:
		return entry.Param{Name: c.text(n), Type: value.T(value.TypeObject)}, true
	case syntax.KindArrayPattern:
		return entry.Param{Name: c.text(n), Type: value.T(value.TypeArray)}, true
	case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
		pattern := syntax.Field(n, "pattern")
		if pattern == nil || pattern.Type() == syntax.KindThis {
			return entry.Param{}, false
		}
		p := entry.Param{Name: c.text(pattern), Type: untyped, Optional: n.Type() == syntax.KindOptionalParameter}
		if pattern.Type() == syntax.KindRestPattern {
			p.Name = c.text(firstOf(pattern))
			p.Rest = true
			p.Type = value.T(value.TypeAny + "[]")
		}
		if def := syntax.Field(n, "value"); def != nil {
			p.Default = c.text(def)
			p.Type = c.TypeOf(def)
			p.Optional = true
		}
		if typeNode := syntax.Field(n, "type"); typeNode != nil {
			p.Type = c.TSType(typeNode)
		}
		return p, true
	}
	return entry.Param{}, false
}

// paramTag is `{type} [name=default] description`.
var paramTag = regexp.MustCompile(`(?s)^(\[[^\]]*\]|[\w$.]+)?\s*(?:-\s*)?(.*)$`)

func applyParamTags(params []entry.Param, keywords []doctag.Keyword, tags ...string) []entry.Param {
	byName := map[string]int{}
	for i, p := range params {
		byName[p.Name] = i
	}
	for _, k := range keywords {
		if !isOneOf(k.Name, tags) {
			continue
		}
		t, rest := braced(k.Description)
		m := paramTag.FindStringSubmatch(rest)
		if m == nil || m[1] == "" {
			continue
		}
		name, def, optional := m[1], "", false
		if strings.HasPrefix(name, "[") {
			optional = true
			name = strings.Trim(name, "[]")
			name, def, _ = strings.Cut(name, "=")
		}
		variadic := strings.HasPrefix(t, "...")
		t = strings.TrimPrefix(t, "...")

		i, ok := byName[name]
		if !ok {
			params = append(params, entry.Param{Name: name, Type: value.T(value.TypeAny)})
			i = len(params) - 1
			byName[name] = i
		}
		p := &params[i]
		if t != "" {
			p.Type = value.T(t)
		}
		if def != "" {
			p.Default = def
		}
		p.Optional = p.Optional || optional
		p.Rest = p.Rest || variadic
		p.Description = strings.TrimSpace(m[2])
	}
	return params
}

func isOneOf(s string, set []string) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

// eventEntry documents an event. args are completed by @arg tags.
func (c *Context) eventEntry(name string, args []entry.Param, commentNode *sitter.Node) *entry.Event {
	e := &entry.Event{Common: c.common(entry.KindEvent, name, commentNode)}
	e.Arguments = applyParamTags(args, e.Keywords, "arg", "argument", "param")
	parts := []string{fmt.Sprintf("%q", name)}
	if len(e.Arguments) > 0 {
		parts = append(parts, paramSyntax(e.Arguments))
	}
	e.Syntax = []string{"emit(" + strings.Join(parts, ", ") + ")"}
	return e
}

// callArguments names the arguments of an emit call after the event name.
func (c *Context) callArguments(args []*sitter.Node) []entry.Param {
	out := make([]entry.Param, 0, len(args))
	for i, arg := range args {
		arg = syntax.Unwrap(arg)
		p := entry.Param{Type: c.TypeOf(arg)}
		switch arg.Type() {
		case syntax.KindIdentifier:
			p.Name = c.text(arg)
		case syntax.KindMemberExpression:
			p.Name = c.text(syntax.Field(arg, "property"))
		case syntax.KindSpreadElement:
			p.Name = c.text(firstOf(arg))
			p.Rest = true
		default:
			p.Name = fmt.Sprintf("arg%d", i+1)
		}
		if p.Type.IsUnknown() {
			p.Type = value.T(value.TypeAny)
		}
		out = append(out, p)
	}
	return out
}

// typeParams converts the parameters of a type signature.
func (c *Context) typeParams(nodes []*sitter.Node) []entry.Param {
	out := make([]entry.Param, 0, len(nodes))
	for i, n := range nodes {
		switch n.Type() {
		case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
			if p, ok := c.param(n); ok {
				out = append(out, p)
			}
		case "tuple_parameter", "optional_tuple_parameter", "named_tuple_member":
			name := syntax.Field(n, "name")
			p := entry.Param{Name: c.text(name), Type: c.TSType(syntax.Field(n, "type")), Optional: n.Type() == "optional_tuple_parameter"}
			if name == nil {
				p.Name = fmt.Sprintf("arg%d", i+1)
			}
			out = append(out, p)
		case "rest_type":
			out = append(out, entry.Param{Name: fmt.Sprintf("arg%d", i+1), Type: c.TSType(firstOf(n)), Rest: true})
		default:
			out = append(out, entry.Param{Name: fmt.Sprintf("arg%d", i+1), Type: c.TSType(n)})
		}
	}
	return out
}

// componentDoc emits name, description and keywords from the component's
// comment. @slot tags become slots.
func (c *Context) componentDoc(out *collector, n *sitter.Node, raw string) {
	var d doctag.Comment
	switch {
	case n != nil:
		d = c.doc(n)
	case raw != "":
		d = doctag.Parse(raw)
		for _, w := range d.Warnings {
			c.st.run.report(LevelWarning, c.st.file.Path, 0, w, nil)
		}
	default:
		return
	}
	line := c.st.file.Line(n)
	if k, ok := keyword(d.Keywords, "name"); ok && k.Description != "" {
		out.add(&entry.Name{Common: entry.Common{Kind: entry.KindName, Name: k.Description, Line: line}})
	}
	if d.Description != "" {
		out.add(&entry.Description{Common: entry.Common{Kind: entry.KindDescription, Description: d.Description, Line: line}})
	}
	var keywords []doctag.Keyword
	for _, k := range d.Keywords {
		switch k.Name {
		case "name":
		case "slot":
			name, desc, _ := strings.Cut(strings.TrimSpace(k.Description), " ")
			if name == "" {
				name = "default"
			}
			out.add(&entry.Slot{Common: entry.Common{Kind: entry.KindSlot, Name: name, Description: strings.TrimSpace(desc), Line: line}})
		default:
			keywords = append(keywords, k)
		}
	}
	if len(keywords) > 0 {
		out.add(&entry.Keywords{Common: entry.Common{Kind: entry.KindKeywords, Keywords: keywords, Line: line}})
	}
}
