// Package entry defines the documentation records produced for a component
// and the visibility rules deciding which of them are kept.
package entry

import (
	"encoding/json"
	"fmt"

	"vuedoc/internal/doctag"
	"vuedoc/internal/value"
)

// Kind is the role of an entry.
type Kind string

const (
	KindName        Kind = "name"
	KindDescription Kind = "description"
	KindKeywords    Kind = "keywords"
	KindProp        Kind = "prop"
	KindData        Kind = "data"
	KindComputed    Kind = "computed"
	KindMethod      Kind = "method"
	KindEvent       Kind = "event"
	KindSlot        Kind = "slot"
	KindModel       Kind = "model"
)

// Kinds lists every entry kind in output order.
var Kinds = []Kind{KindName, KindDescription, KindKeywords, KindProp, KindData, KindComputed, KindMethod, KindEvent, KindSlot, KindModel}

// ParseKind validates a kind name from configuration.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entry kind %q", s)
}

// Entry is one extracted documentation fact.
type Entry interface {
	Meta() *Common
}

// Common holds the fields every entry carries.
type Common struct {
	Kind        Kind             `json:"kind"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Keywords    []doctag.Keyword `json:"keywords,omitempty"`
	Visibility  Visibility       `json:"visibility,omitempty"`
	Line        int              `json:"line,omitempty"`
}

func (c *Common) Meta() *Common { return c }

// Param describes a method parameter, an event argument or a slot prop.
type Param struct {
	Name        string     `json:"name"`
	Type        value.Type `json:"type"`
	Description string     `json:"description,omitempty"`
	Default     string     `json:"default,omitempty"`
	Optional    bool       `json:"optional,omitempty"`
	Rest        bool       `json:"rest,omitempty"`
}

// Returns describes a method result.
type Returns struct {
	Type        value.Type `json:"type"`
	Description string     `json:"description,omitempty"`
}

type Name struct{ Common }

type Description struct{ Common }

type Keywords struct{ Common }

type Prop struct {
	Common
	Type     value.Type `json:"type"`
	Default  string     `json:"default,omitempty"`
	Required bool       `json:"required,omitempty"`
	// DescribeModel marks the prop bound by v-model.
	DescribeModel bool `json:"describeModel,omitempty"`
}

type Data struct {
	Common
	Type         value.Type `json:"type"`
	InitialValue string     `json:"initialValue"`
}

type Computed struct {
	Common
	Type         value.Type `json:"type"`
	Dependencies []string   `json:"dependencies,omitempty"`
}

type Method struct {
	Common
	Params  []Param  `json:"params,omitempty"`
	Returns Returns  `json:"returns"`
	Syntax  []string `json:"syntax,omitempty"`
}

type Event struct {
	Common
	Arguments []Param  `json:"arguments,omitempty"`
	Syntax    []string `json:"syntax,omitempty"`
}

type Slot struct {
	Common
	Props []Param `json:"props,omitempty"`
}

type Model struct {
	Common
	Prop  string `json:"prop"`
	Event string `json:"event"`
}

// List is an ordered entry stream that can be decoded back from JSON.
type List []Entry

// UnmarshalJSON decodes each element by its kind.
func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for _, raw := range raws {
		e, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

// Decode reads one entry written by json.Marshal.
func Decode(raw json.RawMessage) (Entry, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	var e Entry
	switch head.Kind {
	case KindName:
		e = &Name{}
	case KindDescription:
		e = &Description{}
	case KindKeywords:
		e = &Keywords{}
	case KindProp:
		e = &Prop{}
	case KindData:
		e = &Data{}
	case KindComputed:
		e = &Computed{}
	case KindMethod:
		e = &Method{}
	case KindEvent:
		e = &Event{}
	case KindSlot:
		e = &Slot{}
	case KindModel:
		e = &Model{}
	default:
		return nil, fmt.Errorf("unknown entry kind %q", head.Kind)
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode %s entry: %w", head.Kind, err)
	}
	return e, nil
}

// Filter returns the entries of one kind, in order.
func (l List) Filter(kind Kind) List {
	var out List
	for _, e := range l {
		if e.Meta().Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first entry of kind named name.
func (l List) Find(kind Kind, name string) (Entry, bool) {
	for _, e := range l {
		if m := e.Meta(); m.Kind == kind && m.Name == name {
			return e, true
		}
	}
	return nil, false
}
