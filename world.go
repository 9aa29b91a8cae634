// Package scenecore is the entity-component runtime underneath the editor
// and engine: the entity/component store, its synchronous event stream, the
// play-mode snapshot/restore subsystem, and the prefab template system.
// Rendering, physics, scene I/O, the UI, and the agent bridge are external
// consumers that drive the same public mutation API.
package scenecore

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/component"
	"github.com/vibe-engine/scenecore/events"
	"github.com/vibe-engine/scenecore/log"
	"github.com/vibe-engine/scenecore/prefab"
	"github.com/vibe-engine/scenecore/snapshot"
	"github.com/vibe-engine/scenecore/state"
)

// World is an isolated entity-component world. Callers own the instance;
// nothing is process-global, so parallel tests and multiple editor sessions
// can each hold their own.
type World struct {
	logger     zerolog.Logger
	Entities   *state.EntityStore
	Components *state.ComponentRegistry
	Bus        *events.Bus
	Snapshots  *snapshot.Manager
	Prefabs    *prefab.System
}

func NewWorld(opts ...WorldOption) (*World, error) {
	cfg := worldConfig{
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	bus := events.NewBus(cfg.logger)
	entities := state.NewEntityStore(bus, cfg.logger)
	components := state.NewComponentRegistry(entities, bus, cfg.logger)
	store := cfg.snapshotStore
	if store == nil {
		store = snapshot.NewMapStore()
	}
	w := &World{
		logger:     cfg.logger,
		Entities:   entities,
		Components: components,
		Bus:        bus,
		Snapshots:  snapshot.NewManager(entities, components, store, cfg.logger),
		Prefabs:    prefab.NewSystem(entities, components, cfg.logger),
	}
	if !cfg.skipBuiltinComponents {
		if err := component.Register(components); err != nil {
			return nil, err
		}
	}
	log.World(&w.logger, w, zerolog.DebugLevel)
	return w, nil
}

func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

func (w *World) GetRegisteredComponents() []string {
	return w.Components.ListComponents()
}

func (w *World) EntityCount() int {
	return w.Entities.EntityCount()
}

// StartPlaySession captures the snapshot that bounds a play-mode session.
// Physics and scripts may then mutate the world freely.
func (w *World) StartPlaySession(ctx context.Context) error {
	w.logger.Info().Msg("play session starting")
	return w.Snapshots.Backup(ctx)
}

// StopPlaySession rewinds every session mutation and consumes the snapshot.
func (w *World) StopPlaySession(ctx context.Context) error {
	if err := w.Snapshots.Restore(ctx); err != nil {
		return err
	}
	w.logger.Info().Msg("play session stopped, world restored")
	return w.Snapshots.ClearBackup(ctx)
}

type worldConfig struct {
	logger                zerolog.Logger
	snapshotStore         snapshot.Store
	skipBuiltinComponents bool
}

type WorldOption func(*worldConfig)

func WithLogger(logger zerolog.Logger) WorldOption {
	return func(cfg *worldConfig) {
		cfg.logger = logger
	}
}

// WithSnapshotStore swaps the in-memory snapshot store for another backend.
func WithSnapshotStore(store snapshot.Store) WorldOption {
	return func(cfg *worldConfig) {
		cfg.snapshotStore = store
	}
}

// WithRedisSnapshots keeps play-mode snapshots in redis so they survive an
// editor process restart.
func WithRedisSnapshots(client redis.Cmdable) WorldOption {
	return func(cfg *worldConfig) {
		cfg.snapshotStore = snapshot.NewRedisStore(client)
	}
}

// WithoutBuiltinComponents starts the world with an empty component catalog;
// every type must then be registered through the registry.
func WithoutBuiltinComponents() WorldOption {
	return func(cfg *worldConfig) {
		cfg.skipBuiltinComponents = true
	}
}
