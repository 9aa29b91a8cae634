// Package snapshot makes a play-mode simulation session fully reversible:
// Backup captures a deep copy of the whole world, Restore rewinds the store
// to that copy through the same mutation API every other caller uses.
package snapshot

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/codec"
	"github.com/vibe-engine/scenecore/state"
	"github.com/vibe-engine/scenecore/types"
)

const defaultKey = "scenecore:snapshot"

// worldSnapshot is the serialized form of one backup: one record per entity
// that existed at capture time plus every (entity, component type) payload.
type worldSnapshot struct {
	Entities   []entityRecord                                `json:"entities"`
	Components map[types.EntityID]map[string]json.RawMessage `json:"components"`
}

// entityRecord captures the entity-owned state Restore must rewind: display
// name and place in the hierarchy. Children are derived from Parent.
type entityRecord struct {
	ID     types.EntityID `json:"id"`
	Name   string         `json:"name"`
	Parent types.EntityID `json:"parent,omitempty"`
}

type Manager struct {
	entities   *state.EntityStore
	components *state.ComponentRegistry
	store      Store
	key        string
	log        zerolog.Logger
}

func NewManager(
	entities *state.EntityStore,
	components *state.ComponentRegistry,
	store Store,
	logger zerolog.Logger,
) *Manager {
	return &Manager{
		entities:   entities,
		components: components,
		store:      store,
		key:        defaultKey,
		log:        logger.With().Str("system", "snapshot").Logger(),
	}
}

// Backup deep-copies every entity's component payloads plus one record per
// live entity (id, name, parent). An unconsumed prior snapshot is
// overwritten with a warning.
func (m *Manager) Backup(ctx context.Context) error {
	has, err := m.store.Has(ctx, m.key)
	if err != nil {
		return err
	}
	if has {
		m.log.Warn().Msg("overwriting unconsumed snapshot")
	}
	snap := worldSnapshot{Components: map[types.EntityID]map[string]json.RawMessage{}}
	for _, e := range m.entities.GetAllEntities() {
		snap.Entities = append(snap.Entities, entityRecord{ID: e.ID, Name: e.Name, Parent: e.Parent})
		rows := map[string]json.RawMessage{}
		for _, compType := range m.components.ComponentTypesFor(e.ID) {
			rows[compType] = m.components.GetComponentRaw(e.ID, compType)
		}
		snap.Components[e.ID] = rows
	}
	bz, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.key, bz); err != nil {
		return err
	}
	m.log.Info().Int("entities", len(snap.Entities)).Msg("world snapshot captured")
	return nil
}

// Restore rewinds the world to the last snapshot. Per-item failures are
// logged and skipped; the scan always runs to completion. Entities deleted
// during the session are not recreated.
func (m *Manager) Restore(ctx context.Context) error {
	bz, err := m.store.Get(ctx, m.key)
	if err != nil {
		return err
	}
	snap, err := codec.Decode[worldSnapshot](bz)
	if err != nil {
		return err
	}
	inSnapshot := make(map[types.EntityID]struct{}, len(snap.Entities))
	for _, record := range snap.Entities {
		inSnapshot[record.ID] = struct{}{}
	}

	// 1. Entities created during the session go first, components and
	// record as a unit.
	for _, e := range m.entities.GetAllEntities() {
		if _, ok := inSnapshot[e.ID]; ok {
			continue
		}
		if err := m.components.RemoveComponentsForEntity(e.ID); err != nil {
			m.log.Warn().Err(err).Uint64("entity_id", uint64(e.ID)).Msg("restore: component cleanup failed")
		}
		if err := m.entities.DeleteEntity(e.ID); err != nil {
			m.log.Warn().Err(err).Uint64("entity_id", uint64(e.ID)).Msg("restore: entity delete failed")
		}
	}

	// 2. Hierarchy: detach every surviving entity whose parent drifted, then
	// reattach to the recorded parent. Detaching first keeps an inverted
	// session reparent from reading as a cycle mid-restore. A recorded parent
	// deleted during the session stays gone; its children were already
	// promoted to roots by that delete.
	for _, record := range snap.Entities {
		e := m.entities.GetEntity(record.ID)
		if e == nil || e.Parent == record.Parent {
			continue
		}
		if err := m.entities.SetParent(record.ID, types.InvalidEntityID); err != nil {
			m.log.Warn().Err(err).Uint64("entity_id", uint64(record.ID)).Msg("restore: detach failed")
		}
	}
	for _, record := range snap.Entities {
		e := m.entities.GetEntity(record.ID)
		if e == nil || e.Parent == record.Parent {
			continue
		}
		if err := m.entities.SetParent(record.ID, record.Parent); err != nil {
			m.log.Warn().Err(err).Uint64("entity_id", uint64(record.ID)).Msg("restore: reparent failed")
		}
	}

	// 3 + 4. Surviving snapshotted entities get their recorded name and
	// payloads back; anything attached during the session is discarded.
	for _, record := range snap.Entities {
		id := record.ID
		e := m.entities.GetEntity(id)
		if e == nil {
			continue
		}
		if e.Name != record.Name {
			if err := m.entities.Rename(id, record.Name); err != nil {
				m.log.Warn().Err(err).Uint64("entity_id", uint64(id)).Msg("restore: rename failed")
			}
		}
		recorded := snap.Components[id]
		for _, compType := range sortedTypes(recorded) {
			if err := m.components.SetComponentRaw(id, compType, recorded[compType]); err != nil {
				m.log.Warn().Err(err).Uint64("entity_id", uint64(id)).Str("component", compType).
					Msg("restore: component overwrite failed")
			}
		}
		for _, compType := range m.components.ComponentTypesFor(id) {
			if _, ok := recorded[compType]; ok {
				continue
			}
			if err := m.components.RemoveComponent(id, compType); err != nil {
				m.log.Warn().Err(err).Uint64("entity_id", uint64(id)).Str("component", compType).
					Msg("restore: component removal failed")
			}
		}
	}
	m.log.Info().Int("entities", len(snap.Entities)).Msg("world snapshot restored")
	return nil
}

func (m *Manager) HasBackup(ctx context.Context) (bool, error) {
	return m.store.Has(ctx, m.key)
}

func (m *Manager) ClearBackup(ctx context.Context) error {
	return m.store.Delete(ctx, m.key)
}

func sortedTypes(rows map[string]json.RawMessage) []string {
	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
