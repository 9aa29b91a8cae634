package state

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/events"
	"github.com/vibe-engine/scenecore/types"
)

// EntityStore owns entity identity, naming, and the parent/child hierarchy.
// All reads hand out copies; the only way to mutate an entity is through the
// store's own methods, which keep parent and children mutually consistent.
type EntityStore struct {
	nextID   types.EntityID
	entities map[types.EntityID]*types.Entity
	bus      *events.Bus
	log      zerolog.Logger
}

func NewEntityStore(bus *events.Bus, logger zerolog.Logger) *EntityStore {
	return &EntityStore{
		entities: map[types.EntityID]*types.Entity{},
		bus:      bus,
		log:      logger.With().Str("system", "entity_store").Logger(),
	}
}

// Create allocates a fresh entity under parent. Pass types.InvalidEntityID
// as parent to create a root entity.
func (s *EntityStore) Create(name string, parent types.EntityID) (*types.Entity, error) {
	if parent != types.InvalidEntityID {
		if _, ok := s.entities[parent]; !ok {
			return nil, eris.Wrapf(ErrHierarchyViolation, "parent entity %d does not exist", parent)
		}
	}
	s.nextID++
	e := &types.Entity{ID: s.nextID, Name: name, Parent: parent}
	s.entities[e.ID] = e
	if parent != types.InvalidEntityID {
		p := s.entities[parent]
		p.Children = append(p.Children, e.ID)
	}
	s.log.Debug().Uint64("entity_id", uint64(e.ID)).Str("entity_name", name).Msg("entity created")
	created := copyEntity(e)
	s.bus.Emit(events.Event{Kind: events.EntityCreated, Entity: e.ID})
	return created, nil
}

// GetEntity returns a copy of the entity, or nil for an unknown id.
func (s *EntityStore) GetEntity(id types.EntityID) *types.Entity {
	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	return copyEntity(e)
}

func (s *EntityStore) Exists(id types.EntityID) bool {
	_, ok := s.entities[id]
	return ok
}

// GetAllEntities returns copies of every live entity, ordered by id.
func (s *EntityStore) GetAllEntities() []*types.Entity {
	all := make([]*types.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		all = append(all, copyEntity(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (s *EntityStore) EntityCount() int {
	return len(s.entities)
}

// Rename updates the entity's display name.
func (s *EntityStore) Rename(id types.EntityID, name string) error {
	e, ok := s.entities[id]
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", id)
	}
	e.Name = name
	s.bus.Emit(events.Event{Kind: events.EntityUpdated, Entity: id})
	return nil
}

// SetParent moves an entity in the hierarchy. Pass types.InvalidEntityID to
// promote the entity to a root. Moving an entity under itself or one of its
// descendants is rejected.
func (s *EntityStore) SetParent(id types.EntityID, newParent types.EntityID) error {
	e, ok := s.entities[id]
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", id)
	}
	if newParent != types.InvalidEntityID {
		if _, ok := s.entities[newParent]; !ok {
			return eris.Wrapf(ErrHierarchyViolation, "new parent %d does not exist", newParent)
		}
		if newParent == id || s.isDescendant(newParent, id) {
			return eris.Wrapf(ErrHierarchyViolation, "entity %d cannot be its own ancestor", id)
		}
	}
	if e.Parent == newParent {
		return nil
	}
	s.detachFromParent(e)
	e.Parent = newParent
	if newParent != types.InvalidEntityID {
		p := s.entities[newParent]
		p.Children = append(p.Children, id)
	}
	s.bus.Emit(events.Event{Kind: events.EntityUpdated, Entity: id})
	return nil
}

// DeleteEntity removes the entity's own record and detaches it from its
// parent. Descendants are not deleted: surviving children are promoted to
// roots so the hierarchy invariant cannot dangle. Callers that want cascade
// use DeleteEntityTree.
func (s *EntityStore) DeleteEntity(id types.EntityID) error {
	e, ok := s.entities[id]
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", id)
	}
	s.detachFromParent(e)
	children := append([]types.EntityID(nil), e.Children...)
	delete(s.entities, id)
	for _, childID := range children {
		child, ok := s.entities[childID]
		if !ok {
			continue
		}
		child.Parent = types.InvalidEntityID
		s.bus.Emit(events.Event{Kind: events.EntityUpdated, Entity: childID})
	}
	s.log.Debug().Uint64("entity_id", uint64(id)).Msg("entity deleted")
	s.bus.Emit(events.Event{Kind: events.EntityDeleted, Entity: id})
	return nil
}

// DeleteEntityTree deletes the entity and every descendant, leaves first.
func (s *EntityStore) DeleteEntityTree(id types.EntityID) error {
	e, ok := s.entities[id]
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d", id)
	}
	for _, childID := range append([]types.EntityID(nil), e.Children...) {
		if _, ok := s.entities[childID]; !ok {
			continue
		}
		if err := s.DeleteEntityTree(childID); err != nil {
			return err
		}
	}
	return s.DeleteEntity(id)
}

// ClearEntities resets the store to empty, used for scene loads. Ids are not
// reused across clears.
func (s *EntityStore) ClearEntities() {
	s.entities = map[types.EntityID]*types.Entity{}
	s.bus.Emit(events.Event{Kind: events.EntitiesCleared})
}

// isDescendant reports whether candidate sits below ancestor in the tree.
func (s *EntityStore) isDescendant(candidate types.EntityID, ancestor types.EntityID) bool {
	for current := candidate; current != types.InvalidEntityID; {
		e, ok := s.entities[current]
		if !ok {
			return false
		}
		if e.Parent == ancestor {
			return true
		}
		current = e.Parent
	}
	return false
}

func (s *EntityStore) detachFromParent(e *types.Entity) {
	if e.Parent == types.InvalidEntityID {
		return
	}
	p, ok := s.entities[e.Parent]
	if !ok {
		return
	}
	for i, childID := range p.Children {
		if childID == e.ID {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			return
		}
	}
}

func copyEntity(e *types.Entity) *types.Entity {
	out := *e
	out.Children = append([]types.EntityID(nil), e.Children...)
	return &out
}
