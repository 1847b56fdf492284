package extractor

import (
	"vuedoc/internal/entry"
	"vuedoc/internal/script"
)

// ComponentDoc is the documentation extracted from one component file.
type ComponentDoc struct {
	ID           string           `json:"id"`            // Stable identifier, see BuildStableComponentID
	Filepath     string           `json:"filepath"`      // Path to the component file
	Language     string           `json:"language"`      // "vue", "js", "ts", ...
	Name         string           `json:"name"`          // Component name
	Description  string           `json:"description"`   // Component description
	ContentHash  string           `json:"content_hash"`  // Hash of the file content
	Entries      entry.List       `json:"entries"`       // Extracted entries, in output order
	Messages     []script.Message `json:"messages"`      // Warnings and errors of the run
	Dependencies []string         `json:"dependencies"`  // Modules loaded while resolving imports
	Setup        bool             `json:"setup"`         // Has a <script setup> block
}

// HasErrors reports whether the run produced error messages.
func (d *ComponentDoc) HasErrors() bool {
	for _, m := range d.Messages {
		if m.Level == script.LevelError {
			return true
		}
	}
	return false
}

// Count returns the number of entries of a kind.
func (d *ComponentDoc) Count(kind entry.Kind) int {
	return len(d.Entries.Filter(kind))
}
