package types

import "encoding/json"

type EntityID uint64

// InvalidEntityID is the sentinel returned by operations that failed to
// produce an entity. Live ids start at 1.
const InvalidEntityID EntityID = 0

// Entity is an identity with a name and a place in the parent/child
// hierarchy. It carries no behavior; component data lives in the registry.
type Entity struct {
	ID       EntityID   `json:"id"`
	Name     string     `json:"name"`
	Parent   EntityID   `json:"parent,omitempty"`
	Children []EntityID `json:"children,omitempty"`
}

func (e *Entity) IsRoot() bool {
	return e.Parent == InvalidEntityID
}

type EntityStateElement struct {
	ID         EntityID                   `json:"id"`
	Name       string                     `json:"name"`
	Components map[string]json.RawMessage `json:"components"`
}

type EntityStateResponse []EntityStateElement
