// Package prefab captures live entity subtrees into reusable templates and
// instantiates them back into live entities, exclusively through the entity
// store and component registry mutation API.
package prefab

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/codec"
	"github.com/vibe-engine/scenecore/state"
	"github.com/vibe-engine/scenecore/types"
)

// InstanceComponentName is the wire name of the marker component stamped on
// the root of every instantiated prefab.
const InstanceComponentName = "PrefabInstance"

// TransformComponentName is the component whose position field the
// Options.Position override targets.
const TransformComponentName = "Transform"

var ErrPrefabNotFound = eris.New("prefab not found")

type System struct {
	entities   *state.EntityStore
	components *state.ComponentRegistry
	defs       map[string]*Definition
	variants   map[string]*Variant
	log        zerolog.Logger
}

func NewSystem(entities *state.EntityStore, components *state.ComponentRegistry, logger zerolog.Logger) *System {
	return &System{
		entities:   entities,
		components: components,
		defs:       map[string]*Definition{},
		variants:   map[string]*Variant{},
		log:        logger.With().Str("system", "prefab").Logger(),
	}
}

// Register stores a template under its id, replacing any prior template with
// the same id.
func (s *System) Register(def Definition) error {
	if def.ID == "" {
		return eris.New("prefab id must not be empty")
	}
	stored, err := copyDefinition(&def)
	if err != nil {
		return err
	}
	s.defs[def.ID] = stored
	return nil
}

// Get returns a copy of the template, or nil for an unknown id.
func (s *System) Get(id string) *Definition {
	def, ok := s.defs[id]
	if !ok {
		return nil
	}
	out, err := copyDefinition(def)
	if err != nil {
		s.log.Error().Err(err).Str("prefab_id", id).Msg("stored prefab failed to copy")
		return nil
	}
	return out
}

func (s *System) Has(id string) bool {
	_, ok := s.defs[id]
	return ok
}

// List returns copies of every stored template, ordered by id.
func (s *System) List() []*Definition {
	ids := make([]string, 0, len(s.defs))
	for id := range s.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		if def := s.Get(id); def != nil {
			out = append(out, def)
		}
	}
	return out
}

func (s *System) Count() int {
	return len(s.defs)
}

// CreateFromEntity walks the live subtree rooted at rootID in pre-order,
// captures each node's current components, and stores the template under
// prefabID. The live entities are only read, never mutated. The instance
// marker is stripped from captured nodes; a template must not embed the
// identity of the instance it was captured from.
func (s *System) CreateFromEntity(rootID types.EntityID, name string, prefabID string) (*Definition, error) {
	if prefabID == "" {
		return nil, eris.New("prefab id must not be empty")
	}
	root := s.entities.GetEntity(rootID)
	if root == nil {
		return nil, eris.Wrapf(state.ErrEntityDoesNotExist, "entity %d", rootID)
	}
	node := s.captureNode(root)
	def := &Definition{ID: prefabID, Name: name, Version: 1, Root: *node}
	s.defs[prefabID] = def
	s.log.Info().Str("prefab_id", prefabID).Uint64("root_entity", uint64(rootID)).Msg("prefab captured")
	return copyDefinition(def)
}

func (s *System) captureNode(e *types.Entity) *Node {
	node := &Node{Name: e.Name, Components: map[string]map[string]any{}}
	for _, compType := range s.components.ComponentTypesFor(e.ID) {
		if compType == InstanceComponentName {
			continue
		}
		// GetComponentData already hands out a deep copy.
		node.Components[compType] = s.components.GetComponentData(e.ID, compType)
	}
	for _, childID := range e.Children {
		child := s.entities.GetEntity(childID)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, *s.captureNode(child))
	}
	return node
}

// Instantiate creates a live entity tree from the template stored under id,
// which may name a prefab or a variant. An unknown id is a lookup miss, not
// an error: it returns types.InvalidEntityID and creates nothing.
func (s *System) Instantiate(id string, opts Options) types.EntityID {
	def := s.resolve(id)
	if def == nil {
		s.log.Warn().Str("prefab_id", id).Msg("instantiate: unknown prefab")
		return types.InvalidEntityID
	}
	root := def.Root
	if opts.Position != nil {
		applyPosition(&root, *opts.Position)
	}
	rootID := s.instantiateNode(&root, types.InvalidEntityID)
	if rootID == types.InvalidEntityID {
		return types.InvalidEntityID
	}
	marker := map[string]any{
		"prefabId":     def.ID,
		"version":      def.Version,
		"instanceUuid": uuid.NewString(),
	}
	if err := s.components.AddComponent(rootID, InstanceComponentName, marker); err != nil {
		s.log.Warn().Err(err).Uint64("entity_id", uint64(rootID)).Msg("instantiate: marker component skipped")
	}
	return rootID
}

func (s *System) instantiateNode(node *Node, parent types.EntityID) types.EntityID {
	e, err := s.entities.Create(node.Name, parent)
	if err != nil {
		s.log.Warn().Err(err).Str("node", node.Name).Msg("instantiate: entity creation failed")
		return types.InvalidEntityID
	}
	compTypes := make([]string, 0, len(node.Components))
	for compType := range node.Components {
		compTypes = append(compTypes, compType)
	}
	sort.Strings(compTypes)
	for _, compType := range compTypes {
		if err := s.components.AddComponent(e.ID, compType, node.Components[compType]); err != nil {
			s.log.Warn().Err(err).Str("component", compType).Uint64("entity_id", uint64(e.ID)).
				Msg("instantiate: component skipped")
		}
	}
	for i := range node.Children {
		s.instantiateNode(&node.Children[i], e.ID)
	}
	return e.ID
}

// UpsertVariant stores or replaces a variant by id. The base template must
// already exist.
func (s *System) UpsertVariant(v Variant) error {
	if v.ID == "" {
		return eris.New("variant id must not be empty")
	}
	if _, ok := s.defs[v.BaseID]; !ok {
		return eris.Wrapf(ErrPrefabNotFound, "variant base %q", v.BaseID)
	}
	if v.Patch != nil {
		patch, err := codec.DeepCopy(v.Patch)
		if err != nil {
			return err
		}
		v.Patch = patch
	}
	s.variants[v.ID] = &v
	return nil
}

// GetVariant returns the stored variant, or nil for an unknown id.
func (s *System) GetVariant(id string) *Variant {
	v, ok := s.variants[id]
	if !ok {
		return nil
	}
	out := *v
	if v.Patch != nil {
		patch, err := codec.DeepCopy(v.Patch)
		if err != nil {
			s.log.Error().Err(err).Str("variant_id", id).Msg("stored variant failed to copy")
			return nil
		}
		out.Patch = patch
	}
	return &out
}

// Unpack removes the prefab-instance marker from an entity, converting it to
// a free-standing entity. Every other component is left untouched. An entity
// that is not an instance is a warning, not an error.
func (s *System) Unpack(entityID types.EntityID) {
	if !s.components.HasComponent(entityID, InstanceComponentName) {
		s.log.Warn().Uint64("entity_id", uint64(entityID)).Msg("unpack: entity is not a prefab instance")
		return
	}
	if err := s.components.RemoveComponent(entityID, InstanceComponentName); err != nil {
		s.log.Warn().Err(err).Uint64("entity_id", uint64(entityID)).Msg("unpack failed")
	}
}

// resolve returns a fresh working copy of the template stored under id,
// resolving variants by deep-merging their patch onto the base template.
func (s *System) resolve(id string) *Definition {
	if def, ok := s.defs[id]; ok {
		out, err := copyDefinition(def)
		if err != nil {
			s.log.Error().Err(err).Str("prefab_id", id).Msg("stored prefab failed to copy")
			return nil
		}
		return out
	}
	v, ok := s.variants[id]
	if !ok {
		return nil
	}
	base, ok := s.defs[v.BaseID]
	if !ok {
		s.log.Warn().Str("variant_id", id).Str("base_id", v.BaseID).Msg("variant base missing")
		return nil
	}
	merged, err := mergeVariant(base, v)
	if err != nil {
		s.log.Error().Err(err).Str("variant_id", id).Msg("variant merge failed")
		return nil
	}
	return merged
}

func mergeVariant(base *Definition, v *Variant) (*Definition, error) {
	rootDoc, err := toDoc(base.Root)
	if err != nil {
		return nil, err
	}
	if v.Patch != nil {
		rootDoc = codec.Merge(rootDoc, v.Patch)
	}
	bz, err := codec.Encode(rootDoc)
	if err != nil {
		return nil, err
	}
	root, err := codec.Decode[Node](bz)
	if err != nil {
		return nil, err
	}
	name := v.Name
	if name == "" {
		name = base.Name
	}
	version := v.Version
	if version < 1 {
		version = base.Version
	}
	return &Definition{ID: v.ID, Name: name, Version: version, Root: root}, nil
}

// toDoc converts a node to the generic document shape variant patches are
// written in.
func toDoc(node Node) (map[string]any, error) {
	bz, err := codec.Encode(node)
	if err != nil {
		return nil, err
	}
	return codec.Decode[map[string]any](bz)
}

func applyPosition(root *Node, position [3]float64) {
	if root.Components == nil {
		root.Components = map[string]map[string]any{}
	}
	transform, ok := root.Components[TransformComponentName]
	if !ok {
		transform = map[string]any{}
		root.Components[TransformComponentName] = transform
	}
	transform["position"] = []any{position[0], position[1], position[2]}
}

func copyDefinition(def *Definition) (*Definition, error) {
	bz, err := codec.Encode(def)
	if err != nil {
		return nil, err
	}
	out, err := codec.Decode[Definition](bz)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
