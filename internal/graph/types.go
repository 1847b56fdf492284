package graph

type RelationKind string

const (
	// RelationImports links a component to a module its script loaded.
	RelationImports RelationKind = "imports"
)

// Edge represents a directed relationship between two files.
type Edge struct {
	From string       `json:"from"` // Importing component path
	To   string       `json:"to"`   // Imported module path
	Kind RelationKind `json:"kind"`
}
