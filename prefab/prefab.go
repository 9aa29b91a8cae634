package prefab

// Node is one entity of a template: a name, a component-type-to-document
// map, and nested children. Nodes carry no live entity ids.
type Node struct {
	Name       string                    `json:"name"`
	Tags       []string                  `json:"tags,omitempty"`
	Components map[string]map[string]any `json:"components"`
	Children   []Node                    `json:"children,omitempty"`
}

// Definition is a reusable, id-addressable template describing an entity
// subtree.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Version     int      `json:"version"`
	Root        Node     `json:"root"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Variant is a named patch applied on top of a base template at
// instantiation time. The stored base is never mutated.
type Variant struct {
	ID      string `json:"id"`
	BaseID  string `json:"baseId"`
	Name    string `json:"name"`
	Version int    `json:"version"`
	// Patch is a partial document in the shape of the base template's root
	// node (name/tags/components/children); it is deep-merged onto a copy
	// of the base, patch fields winning.
	Patch map[string]any `json:"patch"`
}

// Options tunes a single instantiation.
type Options struct {
	// Position overrides the root node's Transform position.
	Position *[3]float64
}
