package state

import (
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/codec"
	"github.com/vibe-engine/scenecore/events"
	"github.com/vibe-engine/scenecore/schema"
	"github.com/vibe-engine/scenecore/types"
)

// compKey is a tuple of an entity id and a component type name, used as the
// map key for component rows.
type compKey struct {
	entityID types.EntityID
	compType string
}

// Spec declares one component type: its wire name, the schema every payload
// must validate against, and the types it can never share an entity with.
type Spec struct {
	Name   string
	Schema schema.Doc
	// Incompatible lists component types that may never coexist with this
	// one on a single entity. The check is symmetric: declaring the conflict
	// on either side is enough.
	Incompatible []string
	// Prototype optionally ties the spec to a Go struct. Its reflected JSON
	// schema is fingerprinted so a drifting re-registration is rejected.
	Prototype types.Component
}

// ComponentRegistry is the type-indexed, schema-validated component store.
// Payloads are kept as encoded JSON rows so every read decodes a fresh copy
// and callers can never alias store state.
type ComponentRegistry struct {
	entities     *EntityStore
	bus          *events.Bus
	specs        map[string]Spec
	fingerprints map[string][]byte
	data         map[compKey]json.RawMessage
	byType       map[string]map[types.EntityID]struct{}
	log          zerolog.Logger
}

func NewComponentRegistry(entities *EntityStore, bus *events.Bus, logger zerolog.Logger) *ComponentRegistry {
	r := &ComponentRegistry{
		entities:     entities,
		bus:          bus,
		specs:        map[string]Spec{},
		fingerprints: map[string][]byte{},
		data:         map[compKey]json.RawMessage{},
		byType:       map[string]map[types.EntityID]struct{}{},
		log:          logger.With().Str("system", "component_registry").Logger(),
	}
	// Component rows follow entity lifetime through the same event stream
	// external subscribers observe.
	bus.Subscribe(events.EntityDeleted, func(ev events.Event) {
		if err := r.RemoveComponentsForEntity(ev.Entity); err != nil {
			r.log.Warn().Err(err).Uint64("entity_id", uint64(ev.Entity)).Msg("component cleanup after delete failed")
		}
	})
	bus.Subscribe(events.EntitiesCleared, func(events.Event) {
		r.data = map[compKey]json.RawMessage{}
		r.byType = map[string]map[types.EntityID]struct{}{}
	})
	return r
}

// RegisterSpec adds a component type. Registering the same name again is a
// no-op when the schema fingerprint matches and ErrSchemaMismatch when it
// does not.
func (r *ComponentRegistry) RegisterSpec(spec Spec) error {
	if spec.Name == "" {
		return eris.New("component spec must have a name")
	}
	fingerprint, err := fingerprintSpec(spec)
	if err != nil {
		return err
	}
	if existing, ok := r.fingerprints[spec.Name]; ok {
		match, err := types.IsSchemaMatch(existing, fingerprint)
		if err != nil {
			return err
		}
		if !match {
			return eris.Wrapf(ErrSchemaMismatch, "component %q", spec.Name)
		}
		return nil
	}
	spec.Incompatible = append([]string(nil), spec.Incompatible...)
	r.specs[spec.Name] = spec
	r.fingerprints[spec.Name] = fingerprint
	r.log.Debug().Str("component", spec.Name).Msg("component spec registered")
	return nil
}

func fingerprintSpec(spec Spec) ([]byte, error) {
	if spec.Prototype != nil {
		return types.SerializeComponentSchema(spec.Prototype)
	}
	return codec.Encode(spec.Schema)
}

// AddComponent validates data and attaches it to the entity. A failed
// validation or incompatibility check leaves the store untouched and emits
// nothing.
func (r *ComponentRegistry) AddComponent(entityID types.EntityID, compType string, data map[string]any) error {
	spec, ok := r.specs[compType]
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %q", compType)
	}
	if !r.entities.Exists(entityID) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", entityID)
	}
	key := compKey{entityID: entityID, compType: compType}
	if _, ok := r.data[key]; ok {
		return eris.Wrapf(ErrComponentAlreadyOnEntity, "component %q on entity %d", compType, entityID)
	}
	if errs := spec.Schema.Validate(data); len(errs) > 0 {
		return &ValidationError{Component: compType, Errors: errs}
	}
	if conflicts := r.IncompatibleComponentsFor(entityID, compType); len(conflicts) > 0 {
		return eris.Wrapf(ErrIncompatibleComponent,
			"cannot attach %q to entity %d: conflicts with %v", compType, entityID, conflicts)
	}
	bz, err := codec.Encode(data)
	if err != nil {
		return err
	}
	r.setRow(key, bz)
	r.bus.Emit(events.Event{Kind: events.ComponentAdded, Entity: entityID, Component: compType})
	return nil
}

// UpdateComponent merges partial into the existing payload and re-validates
// the merged document. A rejected merge leaves the stored value unchanged.
func (r *ComponentRegistry) UpdateComponent(entityID types.EntityID, compType string, partial map[string]any) error {
	spec, ok := r.specs[compType]
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %q", compType)
	}
	key := compKey{entityID: entityID, compType: compType}
	raw, ok := r.data[key]
	if !ok {
		return eris.Wrapf(ErrComponentNotOnEntity, "component %q on entity %d", compType, entityID)
	}
	current, err := codec.Decode[map[string]any](raw)
	if err != nil {
		return err
	}
	merged := codec.Merge(current, partial)
	if errs := spec.Schema.Validate(merged); len(errs) > 0 {
		return &ValidationError{Component: compType, Errors: errs}
	}
	bz, err := codec.Encode(merged)
	if err != nil {
		return err
	}
	r.data[key] = bz
	r.bus.Emit(events.Event{Kind: events.ComponentUpdated, Entity: entityID, Component: compType})
	return nil
}

// RemoveComponent detaches the component. Removing a component that is not
// present is a no-op, not an error.
func (r *ComponentRegistry) RemoveComponent(entityID types.EntityID, compType string) error {
	key := compKey{entityID: entityID, compType: compType}
	if _, ok := r.data[key]; !ok {
		return nil
	}
	r.dropRow(key)
	r.bus.Emit(events.Event{Kind: events.ComponentRemoved, Entity: entityID, Component: compType})
	return nil
}

// RemoveComponentsForEntity detaches every component on the entity, emitting
// component-removed per removed type.
func (r *ComponentRegistry) RemoveComponentsForEntity(entityID types.EntityID) error {
	for _, compType := range r.ComponentTypesFor(entityID) {
		if err := r.RemoveComponent(entityID, compType); err != nil {
			return err
		}
	}
	return nil
}

// GetComponentData returns a fresh copy of the payload, or nil when the
// entity does not carry the component.
func (r *ComponentRegistry) GetComponentData(entityID types.EntityID, compType string) map[string]any {
	raw, ok := r.data[compKey{entityID: entityID, compType: compType}]
	if !ok {
		return nil
	}
	data, err := codec.Decode[map[string]any](raw)
	if err != nil {
		r.log.Error().Err(err).Str("component", compType).Uint64("entity_id", uint64(entityID)).
			Msg("stored component row failed to decode")
		return nil
	}
	return data
}

// GetComponentRaw returns a copy of the stored JSON row, or nil when absent.
func (r *ComponentRegistry) GetComponentRaw(entityID types.EntityID, compType string) json.RawMessage {
	raw, ok := r.data[compKey{entityID: entityID, compType: compType}]
	if !ok {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// SetComponentRaw overwrites or creates a component row from an encoded
// payload, bypassing validation; the payload must have been validated when
// it was captured. Used by snapshot restore.
func (r *ComponentRegistry) SetComponentRaw(entityID types.EntityID, compType string, raw json.RawMessage) error {
	if _, ok := r.specs[compType]; !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "component %q", compType)
	}
	if !r.entities.Exists(entityID) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", entityID)
	}
	key := compKey{entityID: entityID, compType: compType}
	_, existed := r.data[key]
	r.setRow(key, append(json.RawMessage(nil), raw...))
	kind := events.ComponentAdded
	if existed {
		kind = events.ComponentUpdated
	}
	r.bus.Emit(events.Event{Kind: kind, Entity: entityID, Component: compType})
	return nil
}

func (r *ComponentRegistry) HasComponent(entityID types.EntityID, compType string) bool {
	_, ok := r.data[compKey{entityID: entityID, compType: compType}]
	return ok
}

// ListComponents returns every registered component type name, sorted.
func (r *ComponentRegistry) ListComponents() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComponentTypesFor returns the component types currently attached to the
// entity, sorted.
func (r *ComponentRegistry) ComponentTypesFor(entityID types.EntityID) []string {
	var attached []string
	for name := range r.specs {
		if _, ok := r.data[compKey{entityID: entityID, compType: name}]; ok {
			attached = append(attached, name)
		}
	}
	sort.Strings(attached)
	return attached
}

// EntitiesWith returns the ids of every entity carrying the component type,
// sorted.
func (r *ComponentRegistry) EntitiesWith(compType string) []types.EntityID {
	index, ok := r.byType[compType]
	if !ok {
		return nil
	}
	ids := make([]types.EntityID, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IncompatibleComponentsFor returns the currently attached types that
// conflict with candidate, in sorted order. AddComponent consults this
// before mutating.
func (r *ComponentRegistry) IncompatibleComponentsFor(entityID types.EntityID, candidate string) []string {
	candidateSpec, ok := r.specs[candidate]
	if !ok {
		return nil
	}
	blocked := map[string]struct{}{}
	for _, name := range candidateSpec.Incompatible {
		blocked[name] = struct{}{}
	}
	var conflicts []string
	for _, attached := range r.ComponentTypesFor(entityID) {
		if _, ok := blocked[attached]; ok {
			conflicts = append(conflicts, attached)
			continue
		}
		for _, name := range r.specs[attached].Incompatible {
			if name == candidate {
				conflicts = append(conflicts, attached)
				break
			}
		}
	}
	return conflicts
}

func (r *ComponentRegistry) setRow(key compKey, bz json.RawMessage) {
	r.data[key] = bz
	index, ok := r.byType[key.compType]
	if !ok {
		index = map[types.EntityID]struct{}{}
		r.byType[key.compType] = index
	}
	index[key.entityID] = struct{}{}
}

func (r *ComponentRegistry) dropRow(key compKey) {
	delete(r.data, key)
	if index, ok := r.byType[key.compType]; ok {
		delete(index, key.entityID)
		if len(index) == 0 {
			delete(r.byType, key.compType)
		}
	}
}
