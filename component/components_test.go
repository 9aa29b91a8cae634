package component_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-engine/scenecore/component"
	"github.com/vibe-engine/scenecore/events"
	"github.com/vibe-engine/scenecore/state"
	"github.com/vibe-engine/scenecore/types"
)

func newRegistryForTest(t *testing.T) (*state.EntityStore, *state.ComponentRegistry) {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	entities := state.NewEntityStore(bus, zerolog.Nop())
	registry := state.NewComponentRegistry(entities, bus, zerolog.Nop())
	require.NoError(t, component.Register(registry))
	return entities, registry
}

func TestCatalogRegisters(t *testing.T) {
	_, registry := newRegistryForTest(t)
	assert.Equal(t, []string{
		"Camera", "Instanced", "Light", "MeshRenderer",
		"PrefabInstance", "RigidBody", "Transform",
	}, registry.ListComponents())
}

func TestCatalogReregisterIsNoOp(t *testing.T) {
	_, registry := newRegistryForTest(t)
	assert.NoError(t, component.Register(registry))
	assert.Len(t, registry.ListComponents(), len(component.Specs()))
}

func TestRigidBodyValidation(t *testing.T) {
	entities, registry := newRegistryForTest(t)
	e, _ := entities.Create("crate", types.InvalidEntityID)

	err := registry.AddComponent(e.ID, "RigidBody", map[string]any{
		"mass": -1.0, "bodyType": "squishy",
	})
	assert.ErrorIs(t, err, state.ErrInvalidComponentData)

	var vErr *state.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 2)

	require.NoError(t, registry.AddComponent(e.ID, "RigidBody", map[string]any{
		"mass": 2.5, "bodyType": "dynamic",
	}))
}

func TestRigidBodyAndInstancedConflict(t *testing.T) {
	entities, registry := newRegistryForTest(t)
	e, _ := entities.Create("rock", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Instanced", map[string]any{"count": 100}))

	err := registry.AddComponent(e.ID, "RigidBody", map[string]any{"mass": 1.0})
	assert.ErrorIs(t, err, state.ErrIncompatibleComponent)

	// removing the blocker clears the conflict
	require.NoError(t, registry.RemoveComponent(e.ID, "Instanced"))
	assert.NoError(t, registry.AddComponent(e.ID, "RigidBody", map[string]any{"mass": 1.0}))
}

func TestLightRequiresKnownType(t *testing.T) {
	entities, registry := newRegistryForTest(t)
	e, _ := entities.Create("lamp", types.InvalidEntityID)

	err := registry.AddComponent(e.ID, "Light", map[string]any{"lightType": "laser"})
	assert.ErrorIs(t, err, state.ErrInvalidComponentData)

	assert.NoError(t, registry.AddComponent(e.ID, "Light", map[string]any{
		"lightType": "point", "intensity": 2.0,
	}))
}

func TestCameraFovRange(t *testing.T) {
	entities, registry := newRegistryForTest(t)
	e, _ := entities.Create("cam", types.InvalidEntityID)

	err := registry.AddComponent(e.ID, "Camera", map[string]any{"fov": 200.0})
	assert.ErrorIs(t, err, state.ErrInvalidComponentData)
	assert.NoError(t, registry.AddComponent(e.ID, "Camera", map[string]any{"fov": 60.0}))
}
