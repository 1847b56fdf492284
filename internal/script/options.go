package script

import (
	"log/slog"

	"vuedoc/internal/composition"
	"vuedoc/internal/entry"
	"vuedoc/internal/resolver"
	"vuedoc/internal/syntax"
)

// Level grades a message.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a diagnostic attached to the file or import that caused it.
type Message struct {
	Level Level  `json:"level"`
	File  string `json:"file"`
	Line  int    `json:"line,omitempty"`
	Text  string `json:"text"`
	Err   error  `json:"-"`
}

// Options configure a Parser.
type Options struct {
	// Registry recognizes composition calls. Nil means
	// composition.DefaultRegistry().
	Registry *composition.Registry
	// Resolver loads imported modules. Nil disables cross-module
	// resolution; imports then degrade to unknown bindings.
	Resolver resolver.Resolver
	Logger   *slog.Logger

	DefaultVisibility   entry.Visibility
	IgnoredVisibilities []entry.Visibility
	// Features limits the kinds of entries produced. Empty means all.
	Features []entry.Kind
	// FrameworkModules are never loaded; names imported from them keep
	// their imported name for rule lookup.
	FrameworkModules []string
	// OnEntry, when set, receives each kept entry in output order.
	OnEntry func(entry.Entry)
}

// DefaultIgnoredVisibilities hides non-public members.
var DefaultIgnoredVisibilities = []entry.Visibility{entry.Protected, entry.Private}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = composition.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.DefaultVisibility == "" {
		o.DefaultVisibility = entry.Public
	}
	if o.IgnoredVisibilities == nil {
		o.IgnoredVisibilities = DefaultIgnoredVisibilities
	}
	if o.FrameworkModules == nil {
		o.FrameworkModules = composition.FrameworkModules
	}
	return o
}

// Script is one script block of a component.
type Script struct {
	Path       string
	Lang       syntax.Lang
	Content    []byte
	Setup      bool
	LineOffset int
}

// Component is the unit documented by one run.
type Component struct {
	Path    string
	Scripts []Script
}

// Result is what a run produced once every deferred task settled.
type Result struct {
	Entries      entry.List
	Messages     []Message
	Dependencies []string
}

// Errors returns the error-level messages.
func (r *Result) Errors() []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Level == LevelError {
			out = append(out, m)
		}
	}
	return out
}

// Warnings returns the warning-level messages.
func (r *Result) Warnings() []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Level == LevelWarning {
			out = append(out, m)
		}
	}
	return out
}
