package state_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-engine/scenecore/events"
	"github.com/vibe-engine/scenecore/schema"
	"github.com/vibe-engine/scenecore/state"
	"github.com/vibe-engine/scenecore/types"
)

type healthProto struct {
	Current float64 `json:"current"`
	Maximum float64 `json:"maximum"`
}

func (healthProto) Name() string { return "Health" }

func newRegistryForTest(t *testing.T) (*state.EntityStore, *state.ComponentRegistry, *events.Bus) {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	store := state.NewEntityStore(bus, zerolog.Nop())
	registry := state.NewComponentRegistry(store, bus, zerolog.Nop())
	specs := []state.Spec{
		{
			Name:      "Health",
			Prototype: healthProto{},
			Schema: schema.Doc{Fields: map[string]schema.Field{
				"current": {Kind: schema.Number, Required: true, Min: schema.Bound(0)},
				"maximum": {Kind: schema.Number, Min: schema.Bound(1)},
			}},
		},
		{
			Name:         "Ghost",
			Incompatible: []string{"Solid"},
			Schema:       schema.Doc{Fields: map[string]schema.Field{}},
		},
		{
			Name:   "Solid",
			Schema: schema.Doc{Fields: map[string]schema.Field{}},
		},
	}
	for _, spec := range specs {
		require.NoError(t, registry.RegisterSpec(spec))
	}
	return store, registry, bus
}

func TestAddThenGetRoundTrip(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)

	data := map[string]any{"current": 10.0, "maximum": 10.0}
	require.NoError(t, registry.AddComponent(e.ID, "Health", data))

	got := registry.GetComponentData(e.ID, "Health")
	assert.Equal(t, data, got)
	assert.True(t, registry.HasComponent(e.ID, "Health"))
}

func TestReadsHandOutFreshCopies(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 10.0}))

	got := registry.GetComponentData(e.ID, "Health")
	got["current"] = 0.0

	assert.Equal(t, 10.0, registry.GetComponentData(e.ID, "Health")["current"])
}

func TestUpdateMergesPartialData(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 10.0}))

	require.NoError(t, registry.UpdateComponent(e.ID, "Health", map[string]any{"maximum": 20.0}))

	got := registry.GetComponentData(e.ID, "Health")
	assert.Equal(t, 10.0, got["current"])
	assert.Equal(t, 20.0, got["maximum"])
}

func TestRejectedAddIsNoOpAndSilent(t *testing.T) {
	store, registry, bus := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)

	fired := 0
	bus.Subscribe(events.ComponentAdded, func(events.Event) { fired++ })

	err := registry.AddComponent(e.ID, "Health", map[string]any{"current": -5.0})
	assert.ErrorIs(t, err, state.ErrInvalidComponentData)

	var vErr *state.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Health", vErr.Component)
	assert.NotEmpty(t, vErr.Errors)

	assert.False(t, registry.HasComponent(e.ID, "Health"))
	assert.Equal(t, 0, fired)
}

func TestRejectedUpdateLeavesValueUnchanged(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 10.0}))

	err := registry.UpdateComponent(e.ID, "Health", map[string]any{"current": -1.0})
	assert.ErrorIs(t, err, state.ErrInvalidComponentData)
	assert.Equal(t, 10.0, registry.GetComponentData(e.ID, "Health")["current"])
}

func TestIncompatibleComponentsCannotCoexist(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("wall", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Solid", map[string]any{}))

	// conflict declared on Ghost only, enforced in both directions
	err := registry.AddComponent(e.ID, "Ghost", map[string]any{})
	assert.ErrorIs(t, err, state.ErrIncompatibleComponent)
	assert.False(t, registry.HasComponent(e.ID, "Ghost"))

	assert.Equal(t, []string{"Solid"}, registry.IncompatibleComponentsFor(e.ID, "Ghost"))
}

func TestAddDuplicateComponentFails(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 10.0}))

	err := registry.AddComponent(e.ID, "Health", map[string]any{"current": 5.0})
	assert.ErrorIs(t, err, state.ErrComponentAlreadyOnEntity)
	assert.Equal(t, 10.0, registry.GetComponentData(e.ID, "Health")["current"])
}

func TestAddToUnknownEntityFails(t *testing.T) {
	_, registry, _ := newRegistryForTest(t)
	err := registry.AddComponent(types.EntityID(999), "Health", map[string]any{"current": 1.0})
	assert.ErrorIs(t, err, state.ErrEntityDoesNotExist)
}

func TestUnregisteredComponentFails(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	err := registry.AddComponent(e.ID, "Nonexistent", map[string]any{})
	assert.ErrorIs(t, err, state.ErrComponentNotRegistered)
}

func TestRemoveMissingComponentIsNoOp(t *testing.T) {
	store, registry, bus := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)

	removed := 0
	bus.Subscribe(events.ComponentRemoved, func(events.Event) { removed++ })

	assert.NoError(t, registry.RemoveComponent(e.ID, "Health"))
	assert.Equal(t, 0, removed)
}

func TestRemoveComponentsForEntity(t *testing.T) {
	store, registry, bus := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 1.0}))
	require.NoError(t, registry.AddComponent(e.ID, "Solid", map[string]any{}))

	var removed []string
	bus.Subscribe(events.ComponentRemoved, func(ev events.Event) { removed = append(removed, ev.Component) })

	require.NoError(t, registry.RemoveComponentsForEntity(e.ID))
	assert.Empty(t, registry.ComponentTypesFor(e.ID))
	assert.ElementsMatch(t, []string{"Health", "Solid"}, removed)
}

func TestEntityDeletionDropsComponents(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	e, _ := store.Create("hero", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(e.ID, "Health", map[string]any{"current": 1.0}))

	require.NoError(t, store.DeleteEntity(e.ID))
	assert.False(t, registry.HasComponent(e.ID, "Health"))
	assert.Empty(t, registry.EntitiesWith("Health"))
}

func TestEntitiesWith(t *testing.T) {
	store, registry, _ := newRegistryForTest(t)
	a, _ := store.Create("a", types.InvalidEntityID)
	b, _ := store.Create("b", types.InvalidEntityID)
	_, _ = store.Create("c", types.InvalidEntityID)
	require.NoError(t, registry.AddComponent(a.ID, "Health", map[string]any{"current": 1.0}))
	require.NoError(t, registry.AddComponent(b.ID, "Health", map[string]any{"current": 1.0}))

	assert.Equal(t, []types.EntityID{a.ID, b.ID}, registry.EntitiesWith("Health"))
	assert.Empty(t, registry.EntitiesWith("Solid"))
}

func TestReregisterSameSchemaIsNoOp(t *testing.T) {
	_, registry, _ := newRegistryForTest(t)
	err := registry.RegisterSpec(state.Spec{Name: "Health", Prototype: healthProto{}})
	assert.NoError(t, err)
}

func TestReregisterDifferentSchemaFails(t *testing.T) {
	_, registry, _ := newRegistryForTest(t)
	err := registry.RegisterSpec(state.Spec{
		Name: "Health",
		Schema: schema.Doc{Fields: map[string]schema.Field{
			"hp": {Kind: schema.Integer},
		}},
	})
	assert.ErrorIs(t, err, state.ErrSchemaMismatch)
}

func TestListComponentsSorted(t *testing.T) {
	_, registry, _ := newRegistryForTest(t)
	assert.Equal(t, []string{"Ghost", "Health", "Solid"}, registry.ListComponents())
}
