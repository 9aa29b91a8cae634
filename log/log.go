// Package log carries the structured logging helpers for world-level
// summaries, kept separate so every subsystem logs the same shapes.
package log

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/types"
)

type Loggable interface {
	GetRegisteredComponents() []string
	EntityCount() int
}

// World logs the registered component types and the live entity count.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	components := target.GetRegisteredComponents()
	sort.Strings(components)
	arrayLogger := zerolog.Arr()
	for _, name := range components {
		arrayLogger = arrayLogger.Str(name)
	}
	logger.WithLevel(level).
		Int("total_components", len(components)).
		Array("components", arrayLogger).
		Int("total_entities", target.EntityCount()).
		Send()
}

// Entity logs one entity with its attached component types.
func Entity(
	logger *zerolog.Logger,
	level zerolog.Level,
	entityID types.EntityID,
	name string,
	components []string,
) {
	arrayLogger := zerolog.Arr()
	for _, compName := range components {
		arrayLogger = arrayLogger.Str(compName)
	}
	logger.WithLevel(level).
		Uint64("entity_id", uint64(entityID)).
		Str("entity_name", name).
		Array("components", arrayLogger).
		Send()
}
