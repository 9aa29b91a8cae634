package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/vibe-engine/scenecore/types"
)

type HealthResponse struct {
	IsServerRunning bool `json:"isServerRunning"`
	HasSnapshot     bool `json:"hasSnapshot"`
	TotalEntities   int  `json:"totalEntities"`
}

func (s *Server) handleHealth(ctx *fiber.Ctx) error {
	hasSnapshot, err := s.world.Snapshots.HasBackup(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(HealthResponse{
		IsServerRunning: true,
		HasSnapshot:     hasSnapshot,
		TotalEntities:   s.world.EntityCount(),
	})
}

// handleDebugState dumps every entity with its raw component payloads.
func (s *Server) handleDebugState(ctx *fiber.Ctx) error {
	result := make(types.EntityStateResponse, 0)
	for _, e := range s.world.Entities.GetAllEntities() {
		element := types.EntityStateElement{
			ID:         e.ID,
			Name:       e.Name,
			Components: map[string]json.RawMessage{},
		}
		for _, compType := range s.world.Components.ComponentTypesFor(e.ID) {
			element.Components[compType] = s.world.Components.GetComponentRaw(e.ID, compType)
		}
		result = append(result, element)
	}
	return ctx.JSON(result)
}

func (s *Server) handlePrefabs(ctx *fiber.Ctx) error {
	return ctx.JSON(s.world.Prefabs.List())
}

type PlayResponse struct {
	Status string `json:"status"`
}

func (s *Server) handlePlayStart(ctx *fiber.Ctx) error {
	if err := s.world.StartPlaySession(ctx.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(PlayResponse{Status: "playing"})
}

func (s *Server) handlePlayStop(ctx *fiber.Ctx) error {
	if err := s.world.StopPlaySession(ctx.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(PlayResponse{Status: "stopped"})
}
