package entry

import (
	"fmt"

	"vuedoc/internal/doctag"
)

// Visibility is the public-surface level of an entry.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// ParseVisibility validates a visibility name from configuration.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(s); v {
	case Public, Protected, Private:
		return v, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// KeywordIgnore drops an entry from the output.
const KeywordIgnore = "ignore"

// Policy resolves and filters visibility.
type Policy struct {
	Default Visibility
	Ignored []Visibility
	// Exposed is the component's allow-list (`expose` option or
	// defineExpose). Nil means the component declares none.
	Exposed map[string]bool
}

// Explicit returns the visibility keyword of an entry, if any. The first one
// wins.
func Explicit(keywords []doctag.Keyword) (Visibility, bool) {
	for _, k := range keywords {
		switch v := Visibility(k.Name); v {
		case Public, Protected, Private:
			return v, true
		}
	}
	return "", false
}

// Resolve computes the visibility of a member named name.
//
// The configured default applies first and an explicit keyword overrides it.
// With an allow-list, a member absent from it is private whatever its
// keyword says; a listed member is public unless explicitly marked private
// or protected.
//
// Resolve applies the allow-list to whatever it is given. Apply consults it
// only for the kinds Governed accepts (data, computed and methods); props,
// events, slots and models keep their default or explicit visibility even
// when absent from the list.
func (p Policy) Resolve(name string, keywords []doctag.Keyword) Visibility {
	v := p.Default
	if v == "" {
		v = Public
	}
	explicit, hasExplicit := Explicit(keywords)
	if hasExplicit {
		v = explicit
	}
	if p.Exposed == nil {
		return v
	}
	if !p.Exposed[name] {
		return Private
	}
	if hasExplicit && explicit != Public {
		return explicit
	}
	return Public
}

// Governed reports whether the allow-list applies to kind. It covers the
// instance members a component can expose.
func Governed(kind Kind) bool {
	switch kind {
	case KindData, KindComputed, KindMethod:
		return true
	}
	return false
}

// Apply sets the visibility of e. Component-level entries (name,
// description, keywords) have none.
func (p Policy) Apply(e Entry) {
	m := e.Meta()
	switch m.Kind {
	case KindName, KindDescription, KindKeywords:
		return
	}
	if Governed(m.Kind) {
		m.Visibility = p.Resolve(m.Name, m.Keywords)
		return
	}
	scoped := p
	scoped.Exposed = nil
	m.Visibility = scoped.Resolve(m.Name, m.Keywords)
}

// Keep reports whether e survives the emission boundary: it is not tagged
// @ignore and its visibility is not ignored.
func (p Policy) Keep(e Entry) bool {
	m := e.Meta()
	for _, k := range m.Keywords {
		if k.Name == KeywordIgnore {
			return false
		}
	}
	for _, v := range p.Ignored {
		if m.Visibility == v {
			return false
		}
	}
	return true
}
